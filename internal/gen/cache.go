package gen

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"

	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/policy"
	"pyglue-generator/internal/replace"
)

// DefaultCacheSize is the number of rendered files kept by default.
const DefaultCacheSize = 256

// RenderCache memoizes Render by header content, policy and rename rules.
// It is safe for concurrent use.
type RenderCache struct {
	entries *lru.Cache
	hits    atomic.Int64
	misses  atomic.Int64
}

type rendered struct {
	out   Output
	diags diagnostic.Diagnostics
}

// NewRenderCache returns a cache holding up to size rendered files.
func NewRenderCache(size int) (*RenderCache, error) {
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &RenderCache{entries: entries}, nil
}

// Key combines the inputs that fully determine a render.
func Key(file string, source []byte, pol *policy.Policy, rules *replace.Cache) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(file)
	_, _ = d.Write([]byte{0})

	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], xxhash.Sum64(source))
	binary.LittleEndian.PutUint64(buf[8:], pol.Hash())
	binary.LittleEndian.PutUint64(buf[16:], rules.Fingerprint())
	_, _ = d.Write(buf[:])

	return d.Sum64()
}

// Render returns the cached render of m or renders and stores it. A nil
// cache always renders.
func (c *RenderCache) Render(source []byte, m *model.Model, pol *policy.Policy, rules *replace.Cache) (Output, diagnostic.Diagnostics) {
	if c == nil {
		return Render(m, pol, rules)
	}

	key := Key(m.File, source, pol, rules)
	if v, ok := c.entries.Get(key); ok {
		c.hits.Add(1)

		r := v.(rendered)

		var diags diagnostic.Diagnostics
		diags.Merge(r.diags)

		return r.out, diags
	}

	c.misses.Add(1)

	out, diags := Render(m, pol, rules)
	c.entries.Add(key, rendered{out: out, diags: diags})

	return out, diags
}

// Stats returns the hit and miss counts.
func (c *RenderCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached renders.
func (c *RenderCache) Len() int {
	return c.entries.Len()
}
