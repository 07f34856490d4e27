package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sushihentaime/bloglist/internal/common"
)

// MemoryStore keeps documents in process. Items never expire; go-cache is only used as a
// concurrency-safe map.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	mu     sync.Mutex
	items  *cache.Cache
	seq    int64
	unique []string
}

type memoryDocument struct {
	seq int64
	raw bson.Raw
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{items: cache.New(cache.NoExpiration, 0)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Collection(name string) Collection {
	return s.collection(name)
}

func (s *MemoryStore) EnsureUnique(_ context.Context, collection, field string) error {
	c := s.collection(collection)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.unique {
		if f == field {
			return nil
		}
	}
	c.unique = append(c.unique, field)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// parseMemoryID accepts only the canonical lowercase form documents are keyed by.
func parseMemoryID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return common.ErrMalformedID
	}
	return nil
}

func (c *memoryCollection) get(id string) (*memoryDocument, bool) {
	v, ok := c.items.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*memoryDocument), true
}

// conflicts reports whether raw collides with another document on a unique field. Caller holds c.mu.
func (c *memoryCollection) conflicts(id string, raw bson.Raw) bool {
	for _, field := range c.unique {
		value, err := raw.LookupErr(field)
		if err != nil {
			continue
		}
		for key, item := range c.items.Items() {
			if key == id {
				continue
			}
			other, err := item.Object.(*memoryDocument).raw.LookupErr(field)
			if err == nil && other.Equal(value) {
				return true
			}
		}
	}
	return false
}

func (c *memoryCollection) FindAll(_ context.Context, dst any) error {
	items := c.items.Items()

	docs := make([]*memoryDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, item.Object.(*memoryDocument))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].seq < docs[j].seq })

	raws := make([]bson.Raw, 0, len(docs))
	for _, doc := range docs {
		raws = append(raws, doc.raw)
	}

	return decodeAll(dst, raws)
}

func (c *memoryCollection) FindByID(_ context.Context, id string, dst any) error {
	if err := parseMemoryID(id); err != nil {
		return err
	}

	doc, ok := c.get(id)
	if !ok {
		return common.ErrRecordNotFound
	}

	return decodeOne(doc.raw, dst)
}

func (c *memoryCollection) Insert(_ context.Context, doc any) (string, error) {
	d, err := toDocument(doc)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	raw, err := bson.Marshal(withID(d, id))
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conflicts(id, raw) {
		return "", common.ErrDuplicateKey
	}

	c.seq++
	c.items.Set(id, &memoryDocument{seq: c.seq, raw: raw}, cache.NoExpiration)

	return id, nil
}

func (c *memoryCollection) DeleteByID(_ context.Context, id string) error {
	if err := parseMemoryID(id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.get(id); !ok {
		return common.ErrRecordNotFound
	}
	c.items.Delete(id)

	return nil
}

// modify applies fn to the stored document and writes it back. Caller must not hold c.mu.
func (c *memoryCollection) modify(id string, fn func(bson.D) bson.D) (bson.Raw, error) {
	if err := parseMemoryID(id); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.get(id)
	if !ok {
		return nil, common.ErrRecordNotFound
	}

	var d bson.D
	if err := bson.Unmarshal(doc.raw, &d); err != nil {
		return nil, err
	}

	raw, err := bson.Marshal(fn(d))
	if err != nil {
		return nil, err
	}

	if c.conflicts(id, raw) {
		return nil, common.ErrDuplicateKey
	}

	c.items.Set(id, &memoryDocument{seq: doc.seq, raw: raw}, cache.NoExpiration)

	return raw, nil
}

func (c *memoryCollection) UpdateByID(_ context.Context, id string, fields map[string]any, dst any) error {
	raw, err := c.modify(id, func(d bson.D) bson.D {
		for key, value := range fields {
			if key == idField {
				continue
			}
			d = setField(d, key, value)
		}
		return d
	})
	if err != nil {
		return err
	}

	return decodeOne(raw, dst)
}

func (c *memoryCollection) AppendToArray(_ context.Context, id, field, value string) error {
	_, err := c.modify(id, func(d bson.D) bson.D {
		return appendValue(d, field, value)
	})
	return err
}

func (c *memoryCollection) RemoveFromArray(_ context.Context, id, field, value string) error {
	_, err := c.modify(id, func(d bson.D) bson.D {
		return removeValue(d, field, value)
	})
	return err
}
