package userservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/docstore"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid username or password")
)

// NewUserService builds the user service. Tokens are signed with secret and expire after ttl.
func NewUserService(store docstore.Store, secret []byte, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &UserService{
		m:      newUserModel(store),
		store:  store,
		secret: secret,
		ttl:    ttl,
	}
}

// EnsureIndexes makes usernames unique in the store.
func (s *UserService) EnsureIndexes(ctx context.Context) error {
	return s.store.EnsureUnique(ctx, common.UsersCollection, "username")
}

// CreateUser registers a new user. The returned user never carries the password hash.
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	v := common.NewValidator()
	validateCreateUser(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
		BlogIDs:      []string{},
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	u.PasswordHash = ""
	u.Blogs = []BlogSummary{}

	return &u, nil
}

// LoginUser checks the credentials and returns a signed access token.
func (s *UserService) LoginUser(ctx context.Context, req *LoginRequest) (*AuthToken, error) {
	v := common.NewValidator()
	validateLogin(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByUsername(ctx, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := comparePassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	token, expiry, err := issueToken(user, s.secret, s.ttl, time.Now())
	if err != nil {
		return nil, err
	}

	return &AuthToken{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
		Expiry:   expiry,
	}, nil
}

// Authenticate resolves the subject of a verified token to its user. Every failure, including a
// subject that no longer exists, is reported as common.ErrInvalidToken.
func (s *UserService) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	subject, err := parseToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	user, err := s.m.getUserByID(ctx, subject)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, common.ErrInvalidToken
		default:
			return nil, err
		}
	}

	return user, nil
}

// ListUsers returns every user with the blogs they own. Ids in a user's list that no longer
// resolve to a blog are skipped.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.m.getUsers(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := s.m.getBlogSummaries(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].Blogs = make([]BlogSummary, 0, len(users[i].BlogIDs))
		for _, id := range users[i].BlogIDs {
			if summary, ok := summaries[id]; ok {
				users[i].Blogs = append(users[i].Blogs, summary)
			}
		}
		users[i].PasswordHash = ""
	}

	return users, nil
}
