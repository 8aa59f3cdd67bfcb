package catalog

import "github.com/jaki95/cpceek/internal/domain"

// Catalog maps a local file name to its record. Keys iterate in the order
// they were first added.
type Catalog struct {
	keys    []string
	records map[string]*domain.GameRecord
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{records: make(map[string]*domain.GameRecord)}
}

// Put stores rec under key and reports whether an earlier record was replaced.
// A replaced key keeps its original position.
func (c *Catalog) Put(key string, rec *domain.GameRecord) bool {
	_, replaced := c.records[key]
	if !replaced {
		c.keys = append(c.keys, key)
	}
	c.records[key] = rec
	return replaced
}

func (c *Catalog) Get(key string) (*domain.GameRecord, bool) {
	rec, ok := c.records[key]
	return rec, ok
}

func (c *Catalog) Contains(key string) bool {
	_, ok := c.records[key]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.keys)
}

// Keys returns the file names in insertion order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Records returns the records in insertion order.
func (c *Catalog) Records() []*domain.GameRecord {
	out := make([]*domain.GameRecord, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.records[k])
	}
	return out
}

// Without returns the records of c whose keys are not present in other.
func (c *Catalog) Without(other *Catalog) *Catalog {
	out := New()
	for _, k := range c.keys {
		if other != nil && other.Contains(k) {
			continue
		}
		out.Put(k, c.records[k])
	}
	return out
}
