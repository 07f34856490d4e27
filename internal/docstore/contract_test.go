package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/bloglist/internal/common"
)

type testDoc struct {
	ID    string   `bson:"_id,omitempty"`
	Name  string   `bson:"name"`
	Count int      `bson:"count"`
	Tags  []string `bson:"tags"`
}

// runCollectionContract exercises the behavior every driver must share. missingID returns a
// well-formed id that does not exist in the store.
func runCollectionContract(t *testing.T, s Store, missingID func() string) {
	ctx := context.Background()

	require.NoError(t, s.EnsureUnique(ctx, "contract_docs", "name"))
	c := s.Collection("contract_docs")

	firstID, err := c.Insert(ctx, &testDoc{ID: "ignored", Name: "first", Count: 1, Tags: []string{}})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", firstID)

	secondID, err := c.Insert(ctx, testDoc{Name: "second", Count: 2, Tags: []string{"a"}})
	require.NoError(t, err)

	t.Run("find all keeps insertion order", func(t *testing.T) {
		var docs []testDoc
		require.NoError(t, c.FindAll(ctx, &docs))
		require.Len(t, docs, 2)
		assert.Equal(t, testDoc{ID: firstID, Name: "first", Count: 1, Tags: []string{}}, docs[0])
		assert.Equal(t, testDoc{ID: secondID, Name: "second", Count: 2, Tags: []string{"a"}}, docs[1])
	})

	t.Run("find all into a non slice", func(t *testing.T) {
		var doc testDoc
		assert.Error(t, c.FindAll(ctx, &doc))
	})

	t.Run("find by id", func(t *testing.T) {
		var doc testDoc
		require.NoError(t, c.FindByID(ctx, secondID, &doc))
		assert.Equal(t, "second", doc.Name)

		assert.ErrorIs(t, c.FindByID(ctx, "not-an-id", &doc), common.ErrMalformedID)
		assert.ErrorIs(t, c.FindByID(ctx, missingID(), &doc), common.ErrRecordNotFound)
	})

	t.Run("duplicate unique field", func(t *testing.T) {
		_, err := c.Insert(ctx, &testDoc{Name: "first"})
		assert.ErrorIs(t, err, common.ErrDuplicateKey)

		err = c.UpdateByID(ctx, secondID, map[string]any{"name": "first"}, nil)
		assert.ErrorIs(t, err, common.ErrDuplicateKey)
	})

	t.Run("update merges fields", func(t *testing.T) {
		var doc testDoc
		err := c.UpdateByID(ctx, firstID, map[string]any{"count": 10}, &doc)
		require.NoError(t, err)
		assert.Equal(t, testDoc{ID: firstID, Name: "first", Count: 10, Tags: []string{}}, doc)

		assert.ErrorIs(t, c.UpdateByID(ctx, "not-an-id", map[string]any{"count": 1}, nil), common.ErrMalformedID)
		assert.ErrorIs(t, c.UpdateByID(ctx, missingID(), map[string]any{"count": 1}, nil), common.ErrRecordNotFound)
	})

	t.Run("array append and remove", func(t *testing.T) {
		require.NoError(t, c.AppendToArray(ctx, firstID, "tags", "x"))
		require.NoError(t, c.AppendToArray(ctx, firstID, "tags", "y"))

		var doc testDoc
		require.NoError(t, c.FindByID(ctx, firstID, &doc))
		assert.Equal(t, []string{"x", "y"}, doc.Tags)

		require.NoError(t, c.RemoveFromArray(ctx, firstID, "tags", "x"))
		require.NoError(t, c.FindByID(ctx, firstID, &doc))
		assert.Equal(t, []string{"y"}, doc.Tags)

		assert.ErrorIs(t, c.AppendToArray(ctx, missingID(), "tags", "x"), common.ErrRecordNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.DeleteByID(ctx, secondID))
		assert.ErrorIs(t, c.DeleteByID(ctx, secondID), common.ErrRecordNotFound)
		assert.ErrorIs(t, c.DeleteByID(ctx, "not-an-id"), common.ErrMalformedID)

		var docs []testDoc
		require.NoError(t, c.FindAll(ctx, &docs))
		assert.Len(t, docs, 1)
	})

	t.Run("empty collection", func(t *testing.T) {
		var docs []testDoc
		require.NoError(t, s.Collection("contract_empty").FindAll(ctx, &docs))
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})
}
