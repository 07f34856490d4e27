package userservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/docstore"
)

var testSecret = []byte("test-secret")

func setupTestEnvironment(t *testing.T) (*UserService, docstore.Store) {
	t.Helper()

	store := docstore.NewMemoryStore()
	s := NewUserService(store, testSecret, time.Hour)
	require.NoError(t, s.EnsureIndexes(context.Background()))

	return s, store
}

func testUserRequest() *CreateUserRequest {
	return &CreateUserRequest{
		Username: "mluukkai",
		Name:     "Matti Luukkainen",
		Password: "salainen",
	}
}

func TestCreateUser(t *testing.T) {
	s, _ := setupTestEnvironment(t)
	ctx := context.Background()

	testCases := []struct {
		name        string
		payload     *CreateUserRequest
		expectedErr map[string]string
	}{
		{
			name:    "valid user",
			payload: testUserRequest(),
		},
		{
			name:        "missing username",
			payload:     &CreateUserRequest{Name: "x", Password: "secret"},
			expectedErr: map[string]string{"username": "must be provided"},
		},
		{
			name:        "short username",
			payload:     &CreateUserRequest{Username: "ab", Password: "secret"},
			expectedErr: map[string]string{"username": "must be at least 3 characters long"},
		},
		{
			name:        "short password",
			payload:     &CreateUserRequest{Username: "root", Password: "pw"},
			expectedErr: map[string]string{"password": "must be at least 3 characters long"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := s.CreateUser(ctx, tc.payload)
			if tc.expectedErr == nil {
				require.NoError(t, err)
				assert.NotEmpty(t, u.ID)
				assert.Equal(t, tc.payload.Username, u.Username)
				assert.Empty(t, u.PasswordHash)
				assert.NotNil(t, u.Blogs)
				return
			}

			var verr common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.expectedErr, verr.Errors)
		})
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s, _ := setupTestEnvironment(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, testUserRequest())
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, testUserRequest())
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCreateUserStoresHash(t *testing.T) {
	s, _ := setupTestEnvironment(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, testUserRequest())
	require.NoError(t, err)

	stored, err := s.m.getUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "salainen", stored.PasswordHash)

	ok, err := comparePassword(stored.PasswordHash, "salainen")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginUser(t *testing.T) {
	s, _ := setupTestEnvironment(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, testUserRequest())
	require.NoError(t, err)

	testCases := []struct {
		name        string
		payload     *LoginRequest
		expectedErr error
	}{
		{
			name:    "valid credentials",
			payload: &LoginRequest{Username: "mluukkai", Password: "salainen"},
		},
		{
			name:        "wrong password",
			payload:     &LoginRequest{Username: "mluukkai", Password: "wrong"},
			expectedErr: ErrAuthenticationFailure,
		},
		{
			name:        "unknown user",
			payload:     &LoginRequest{Username: "nobody", Password: "salainen"},
			expectedErr: ErrAuthenticationFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := s.LoginUser(ctx, tc.payload)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "mluukkai", tok.Username)
			assert.Equal(t, "Matti Luukkainen", tok.Name)

			u, err := s.Authenticate(ctx, tok.Token)
			require.NoError(t, err)
			assert.Equal(t, created.ID, u.ID)
		})
	}
}

func TestLoginUserMissingFields(t *testing.T) {
	s, _ := setupTestEnvironment(t)

	_, err := s.LoginUser(context.Background(), &LoginRequest{})

	var verr common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "username")
	assert.Contains(t, verr.Errors, "password")
}

func TestAuthenticate(t *testing.T) {
	s, store := setupTestEnvironment(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, testUserRequest())
	require.NoError(t, err)

	expired, _, err := issueToken(u, testSecret, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	foreign, _, err := issueToken(u, []byte("other-secret"), time.Hour, time.Now())
	require.NoError(t, err)

	ghost, _, err := issueToken(&User{ID: "missing", Username: "ghost"}, testSecret, time.Hour, time.Now())
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"expired":        expired,
		"foreign secret": foreign,
		"unknown user":   ghost,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Authenticate(ctx, token)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}

	t.Run("deleted user", func(t *testing.T) {
		tok, _, err := issueToken(u, testSecret, time.Hour, time.Now())
		require.NoError(t, err)
		require.NoError(t, store.Collection(common.UsersCollection).DeleteByID(ctx, u.ID))

		_, err = s.Authenticate(ctx, tok)
		assert.True(t, errors.Is(err, common.ErrInvalidToken))
	})
}

func TestListUsers(t *testing.T) {
	s, store := setupTestEnvironment(t)
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	u, err := s.CreateUser(ctx, testUserRequest())
	require.NoError(t, err)

	blogs := store.Collection(common.BlogsCollection)
	blogID, err := blogs.Insert(ctx, &blogDocument{BlogSummary: BlogSummary{
		Title:  "Go To Statement Considered Harmful",
		Author: "Edsger W. Dijkstra",
		URL:    "http://example.com/goto",
		Likes:  5,
	}})
	require.NoError(t, err)

	userColl := store.Collection(common.UsersCollection)
	require.NoError(t, userColl.AppendToArray(ctx, u.ID, "blogs", blogID))
	// dangling reference
	require.NoError(t, userColl.AppendToArray(ctx, u.ID, "blogs", "deleted-blog"))

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
	require.Len(t, users[0].Blogs, 1)
	assert.Equal(t, "Edsger W. Dijkstra", users[0].Blogs[0].Author)
	assert.Equal(t, 5, users[0].Blogs[0].Likes)
}
