// Package replace holds the deferred text-rewrite rules discovered while a
// header is modeled and applied only when text is rendered.
//
// Some renames are only known once a whole enum (or file) has been scanned,
// while text for earlier declarations already refers to the old names. The
// builder records rules here and rendering applies them; the semantic model
// itself is never rewritten.
package replace

import (
	"regexp"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// Rule is one rewrite. Rules apply in Order.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
	// Literal disables $-expansion in Replacement.
	Literal bool
	Order   int
}

// Cache is an ordered, append-only rule list. Add may be called concurrently.
type Cache struct {
	mu    sync.Mutex
	rules []Rule
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// Add appends a regex rule. The replacement may use $1-style expansion.
func (c *Cache) Add(pattern, replacement string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errors.Wrapf(err, "replacement pattern %q", pattern)
	}

	c.append(Rule{Pattern: re, Replacement: replacement})

	return nil
}

// AddWord appends a rule replacing whole-word occurrences of old with repl.
func (c *Cache) AddWord(old, repl string) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(old) + `\b`)
	c.append(Rule{Pattern: re, Replacement: repl, Literal: true})
}

func (c *Cache) append(r Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r.Order = len(c.rules)
	c.rules = append(c.rules, r)
}

// Apply rewrites text with every rule in insertion order. A nil cache
// returns text unchanged.
func (c *Cache) Apply(text string) string {
	if c == nil {
		return text
	}

	for _, r := range c.Rules() {
		if r.Literal {
			text = r.Pattern.ReplaceAllLiteralString(text, r.Replacement)
		} else {
			text = r.Pattern.ReplaceAllString(text, r.Replacement)
		}
	}

	return text
}

// Rules returns a snapshot of the rules.
func (c *Cache) Rules() []Rule {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Rule(nil), c.rules...)
}

// Len returns the number of rules.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.rules)
}

// Merge appends the rules of other after the existing ones, keeping their
// relative order.
func (c *Cache) Merge(other *Cache) {
	for _, r := range other.Rules() {
		c.append(r)
	}
}

// Fingerprint is a stable digest of the rule list, used in render cache keys.
func (c *Cache) Fingerprint() uint64 {
	d := xxhash.New()

	for _, r := range c.Rules() {
		_, _ = d.WriteString(r.Pattern.String())
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(r.Replacement)

		if r.Literal {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	}

	return d.Sum64()
}
