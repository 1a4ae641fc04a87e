// Package storetest provides an in-memory document store for tests.
package storetest

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory mimics the store adapter contract on top of maps. Filters and
// projections are not evaluated: Find returns every document.
type Memory struct {
	mu          sync.Mutex
	collections map[string]*collection
	err         error
}

type collection struct {
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]bson.M
}

func NewMemory() *Memory {
	return &Memory{collections: map[string]*collection{}}
}

// SetError makes every subsequent call fail with err. Pass nil to reset.
func (m *Memory) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) Insert(_ context.Context, name string, record any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}

	doc, err := normalize(record)
	if err != nil {
		return "", err
	}
	id, ok := doc["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		doc["_id"] = id
	}

	c, ok := m.collections[name]
	if !ok {
		c = &collection{docs: map[primitive.ObjectID]bson.M{}}
		m.collections[name] = c
	}
	c.order = append(c.order, id)
	c.docs[id] = doc
	return id.Hex(), nil
}

func (m *Memory) Find(_ context.Context, name string, _, _ any) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	c := m.collection(name)
	out := make([]bson.M, 0, len(c.order))
	for _, id := range c.order {
		doc, err := normalize(c.docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *Memory) UpdateOne(_ context.Context, name string, id primitive.ObjectID, fields bson.M) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, 0, m.err
	}

	doc, ok := m.collection(name).docs[id]
	if !ok {
		return 0, 0, nil
	}
	set, err := normalize(fields)
	if err != nil {
		return 0, 0, err
	}

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changed := false
	for _, k := range keys {
		if !reflect.DeepEqual(doc[k], set[k]) {
			doc[k] = set[k]
			changed = true
		}
	}
	if changed {
		return 1, 1, nil
	}
	return 1, 0, nil
}

func (m *Memory) DeleteOne(_ context.Context, name string, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}

	c := m.collection(name)
	if _, ok := c.docs[id]; !ok {
		return 0, nil
	}
	delete(c.docs, id)
	for i, other := range c.order {
		if other == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

// Available is always true for Memory.
func (m *Memory) Available() bool { return true }

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Memory) CollectionNames(_ context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Len returns the number of documents in the named collection.
func (m *Memory) Len(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.collection(name).order)
}

// Get returns a copy of one document.
func (m *Memory) Get(name string, id primitive.ObjectID) (bson.M, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collection(name).docs[id]
	if !ok {
		return nil, false
	}
	out, err := normalize(doc)
	if err != nil {
		return nil, false
	}
	return out, true
}

// collection returns the named collection, or an empty detached one when
// nothing was ever inserted into it. Only Insert creates collections.
func (m *Memory) collection(name string) *collection {
	if c, ok := m.collections[name]; ok {
		return c
	}
	return &collection{docs: map[primitive.ObjectID]bson.M{}}
}

// normalize round-trips v through BSON so stored values have the same types
// the driver would decode.
func normalize(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
