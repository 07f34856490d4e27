package blogservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/docstore"
)

// NewBlogService builds the blog service. mb may be nil, in which case no events are published.
func NewBlogService(store docstore.Store, mb common.MessageProducer, logger *slog.Logger) *BlogService {
	return &BlogService{
		m:      newBlogModel(store),
		mb:     mb,
		logger: logger,
	}
}

// ListBlogs returns every blog with its owner summary attached.
func (s *BlogService) ListBlogs(ctx context.Context) ([]Blog, error) {
	blogs, err := s.m.getBlogs(ctx)
	if err != nil {
		return nil, err
	}

	owners, err := s.m.getOwners(ctx)
	if err != nil {
		return nil, err
	}

	for i := range blogs {
		if owner, ok := owners[blogs[i].OwnerID]; ok {
			blogs[i].User = &owner
		}
	}

	return blogs, nil
}

// CreateBlog stores a new blog owned by owner, appends it to the owner's blog list and publishes
// a blog.created event. The append and the event are best effort: once the blog is stored their
// failures are only logged.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest, owner *Owner) (*Blog, error) {
	req.Title = sanitizeText(req.Title)
	req.Author = sanitizeText(req.Author)

	v := common.NewValidator()
	validateCreateBlog(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
	}
	if req.Likes != nil {
		blog.Likes = *req.Likes
	}
	if owner != nil {
		blog.OwnerID = owner.ID
	}

	err := s.m.insert(ctx, &blog)
	if err != nil {
		return nil, err
	}

	if owner == nil {
		return &blog, nil
	}

	blog.User = owner

	err = s.m.addToOwner(ctx, owner.ID, blog.ID)
	if err != nil {
		s.logger.Error("could not add blog to owner", slog.String("blog", blog.ID), slog.String("user", owner.ID), slog.String("error", err.Error()))
	}

	s.publishCreated(ctx, &blog)

	return &blog, nil
}

func (s *BlogService) publishCreated(ctx context.Context, blog *Blog) {
	if s.mb == nil {
		return
	}

	msg := BlogCreatedMessage{
		ID:     blog.ID,
		Title:  blog.Title,
		Author: blog.Author,
		URL:    blog.URL,
	}
	if blog.User != nil {
		msg.Username = blog.User.Username
	}

	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("could not marshal blog.created message", slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, data, common.BlogCreatedKey, common.BlogExchange)
	if err != nil {
		s.logger.Error("could not publish blog.created message", slog.String("blog", blog.ID), slog.String("error", err.Error()))
	}
}

// GetBlog returns a blog by its id with its owner summary attached.
func (s *BlogService) GetBlog(ctx context.Context, id string) (*Blog, error) {
	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	blog.User, err = s.m.getOwner(ctx, blog.OwnerID)
	if err != nil {
		return nil, err
	}

	return blog, nil
}

// authorize loads the blog and checks that userID owns it.
func (s *BlogService) authorize(ctx context.Context, id, userID string) (*Blog, error) {
	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.OwnerID == "" || blog.OwnerID != userID {
		return nil, common.ErrUnauthorized
	}

	return blog, nil
}

// UpdateBlog merges the supplied fields into the blog. Only the blog's owner may update it.
func (s *BlogService) UpdateBlog(ctx context.Context, id string, req *UpdateBlogRequest, userID string) (*Blog, error) {
	// non-owners get ErrUnauthorized whatever the body holds
	_, err := s.authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		*req.Title = sanitizeText(*req.Title)
	}
	if req.Author != nil {
		*req.Author = sanitizeText(*req.Author)
	}

	v := common.NewValidator()
	validateUpdateBlog(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	fields := make(map[string]any, 4)
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Author != nil {
		fields["author"] = *req.Author
	}
	if req.URL != nil {
		fields["url"] = *req.URL
	}
	if req.Likes != nil {
		fields["likes"] = *req.Likes
	}

	var blog *Blog
	if len(fields) == 0 {
		blog, err = s.m.getBlogByID(ctx, id)
	} else {
		blog, err = s.m.updateBlog(ctx, id, fields)
	}
	if err != nil {
		return nil, err
	}

	blog.User, err = s.m.getOwner(ctx, blog.OwnerID)
	if err != nil {
		return nil, err
	}

	return blog, nil
}

// DeleteBlog removes the blog and drops it from the owner's blog list. Only the blog's owner may
// delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, id, userID string) error {
	blog, err := s.authorize(ctx, id, userID)
	if err != nil {
		return err
	}

	err = s.m.deleteBlog(ctx, id)
	if err != nil {
		return err
	}

	err = s.m.removeFromOwner(ctx, blog.OwnerID, id)
	if err != nil && !errors.Is(err, common.ErrRecordNotFound) {
		s.logger.Error("could not remove blog from owner", slog.String("blog", id), slog.String("user", blog.OwnerID), slog.String("error", err.Error()))
	}

	return nil
}

// Stats loads every blog and summarizes it.
func (s *BlogService) Stats(ctx context.Context) (*Summary, error) {
	blogs, err := s.m.getBlogs(ctx)
	if err != nil {
		return nil, err
	}

	summary := Summarize(blogs)
	return &summary, nil
}
