package userservice

import (
	"time"

	"github.com/sushihentaime/bloglist/internal/docstore"
)

const (
	DefaultTokenTTL time.Duration = time.Hour

	bcryptCost = 10
)

type UserService struct {
	m      *UserModel
	store  docstore.Store
	secret []byte
	ttl    time.Duration
}

type UserModel struct {
	users docstore.Collection
	blogs docstore.Collection
}

type User struct {
	ID           string   `json:"id" bson:"_id,omitempty"`
	Username     string   `json:"username" bson:"username"`
	Name         string   `json:"name" bson:"name"`
	PasswordHash string   `json:"-" bson:"passwordHash"`
	BlogIDs      []string `json:"-" bson:"blogs"`

	// Blogs is the denormalized view of BlogIDs, filled when listing users.
	Blogs []BlogSummary `json:"blogs" bson:"-"`
}

type BlogSummary struct {
	Title  string `json:"title" bson:"title"`
	Author string `json:"author" bson:"author"`
	URL    string `json:"url" bson:"url"`
	Likes  int    `json:"likes" bson:"likes"`
}

// blogDocument reads only the summary fields out of the blogs collection.
type blogDocument struct {
	ID          string `bson:"_id"`
	BlogSummary `bson:",inline"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Name     string `json:"name"`
	Password string `json:"password" validate:"required,min=3"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthToken is returned by a successful login.
type AuthToken struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Expiry   time.Time `json:"expiry"`
}
