package blogservice

import (
	"context"
	"errors"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/docstore"
)

func newBlogModel(store docstore.Store) *BlogModel {
	return &BlogModel{
		blogs: store.Collection(common.BlogsCollection),
		users: store.Collection(common.UsersCollection),
	}
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	id, err := m.blogs.Insert(ctx, blog)
	if err != nil {
		return err
	}

	blog.ID = id
	return nil
}

func (m *BlogModel) getBlogs(ctx context.Context) ([]Blog, error) {
	var blogs []Blog
	if err := m.blogs.FindAll(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (m *BlogModel) getBlogByID(ctx context.Context, id string) (*Blog, error) {
	var blog Blog
	if err := m.blogs.FindByID(ctx, id, &blog); err != nil {
		return nil, err
	}
	return &blog, nil
}

func (m *BlogModel) updateBlog(ctx context.Context, id string, fields map[string]any) (*Blog, error) {
	var blog Blog
	if err := m.blogs.UpdateByID(ctx, id, fields, &blog); err != nil {
		return nil, err
	}
	return &blog, nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id string) error {
	return m.blogs.DeleteByID(ctx, id)
}

// getOwner returns nil without error when the user no longer exists.
func (m *BlogModel) getOwner(ctx context.Context, userID string) (*Owner, error) {
	if userID == "" {
		return nil, nil
	}

	var owner Owner
	err := m.users.FindByID(ctx, userID, &owner)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound), errors.Is(err, common.ErrMalformedID):
			return nil, nil
		default:
			return nil, err
		}
	}

	return &owner, nil
}

// getOwners returns every user summary keyed by id.
func (m *BlogModel) getOwners(ctx context.Context) (map[string]Owner, error) {
	var owners []Owner
	if err := m.users.FindAll(ctx, &owners); err != nil {
		return nil, err
	}

	byID := make(map[string]Owner, len(owners))
	for _, o := range owners {
		byID[o.ID] = o
	}

	return byID, nil
}

func (m *BlogModel) addToOwner(ctx context.Context, userID, blogID string) error {
	return m.users.AppendToArray(ctx, userID, "blogs", blogID)
}

func (m *BlogModel) removeFromOwner(ctx context.Context, userID, blogID string) error {
	return m.users.RemoveFromArray(ctx, userID, "blogs", blogID)
}
