package blogservice

import (
	"log/slog"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/docstore"
)

type Blog struct {
	ID     string `json:"id" bson:"_id,omitempty"`
	Title  string `json:"title" bson:"title"`
	Author string `json:"author" bson:"author"`
	URL    string `json:"url" bson:"url"`
	Likes  int    `json:"likes" bson:"likes"`
	// OwnerID is the id of the user who created the blog, empty for anonymous records.
	OwnerID string `json:"-" bson:"user,omitempty"`

	User *Owner `json:"user,omitempty" bson:"-"`
}

// Owner is the denormalized summary of a blog's creator.
type Owner struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Name     string `json:"name" bson:"name"`
}

type BlogModel struct {
	blogs docstore.Collection
	users docstore.Collection
}

type BlogService struct {
	m      *BlogModel
	mb     common.MessageProducer
	logger *slog.Logger
}

type CreateBlogRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	URL    string `json:"url" validate:"required"`
	Likes  *int   `json:"likes" validate:"omitempty,min=0"`
}

// UpdateBlogRequest carries the fields to merge into a blog. Nil fields are left unchanged.
type UpdateBlogRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int    `json:"likes"`
}

// BlogCreatedMessage is the payload published on common.BlogCreatedKey.
type BlogCreatedMessage struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	URL      string `json:"url"`
	Username string `json:"username"`
}
