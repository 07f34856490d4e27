package userservice

import (
	"context"
	"errors"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/docstore"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrNotFound          = errors.New("user not found")
)

func newUserModel(store docstore.Store) *UserModel {
	return &UserModel{
		users: store.Collection(common.UsersCollection),
		blogs: store.Collection(common.BlogsCollection),
	}
}

func (m *UserModel) insertUser(ctx context.Context, u *User) error {
	if u.BlogIDs == nil {
		u.BlogIDs = []string{}
	}

	id, err := m.users.Insert(ctx, u)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateKey):
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	u.ID = id
	return nil
}

func (m *UserModel) getUserByID(ctx context.Context, id string) (*User, error) {
	var u User

	err := m.users.FindByID(ctx, id, &u)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound), errors.Is(err, common.ErrMalformedID):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// getUserByUsername scans the collection; the store interface has no secondary lookups.
func (m *UserModel) getUserByUsername(ctx context.Context, username string) (*User, error) {
	users, err := m.getUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}

	return nil, ErrNotFound
}

func (m *UserModel) getUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := m.users.FindAll(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// getBlogSummaries returns the summary of every blog keyed by id.
func (m *UserModel) getBlogSummaries(ctx context.Context) (map[string]BlogSummary, error) {
	var blogs []blogDocument
	if err := m.blogs.FindAll(ctx, &blogs); err != nil {
		return nil, err
	}

	summaries := make(map[string]BlogSummary, len(blogs))
	for _, b := range blogs {
		summaries[b.ID] = b.BlogSummary
	}

	return summaries, nil
}
