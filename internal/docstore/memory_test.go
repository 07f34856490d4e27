package docstore

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/bloglist/internal/common"
)

func TestMemoryStore(t *testing.T) {
	runCollectionContract(t, NewMemoryStore(), uuid.NewString)
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("docs")

	id, err := c.Insert(ctx, &testDoc{Name: "doc", Tags: []string{}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.AppendToArray(ctx, id, "tags", "t"))
		}()
	}
	wg.Wait()

	var doc testDoc
	require.NoError(t, c.FindByID(ctx, id, &doc))
	assert.Len(t, doc.Tags, 50)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("sqlite", "", "")
	assert.Error(t, err)

	s, err := Open(DriverMemory, "", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, s.Close())
}

func TestMemoryStoreRejectsNonCanonicalIDs(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStore().Collection("docs")

	id, err := c.Insert(ctx, &testDoc{Name: "doc", Tags: []string{}})
	require.NoError(t, err)

	for _, alt := range []string{
		strings.ToUpper(id),
		"urn:uuid:" + id,
		"{" + id + "}",
		strings.ReplaceAll(id, "-", ""),
	} {
		t.Run(alt, func(t *testing.T) {
			var doc testDoc
			assert.ErrorIs(t, c.FindByID(ctx, alt, &doc), common.ErrMalformedID)
			assert.ErrorIs(t, c.DeleteByID(ctx, alt), common.ErrMalformedID)
		})
	}

	var doc testDoc
	require.NoError(t, c.FindByID(ctx, id, &doc))
	assert.Equal(t, "doc", doc.Name)
}
