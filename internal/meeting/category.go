package meeting

import (
	"fmt"
	"strings"
)

// Category is one label of the closed category set.
type Category string

// Other is the default bucket. It is always a member of every CategorySet.
const Other Category = "Other"

// DefaultCategories is the set used when none is configured.
var DefaultCategories = []Category{
	"Daily Team Meeting",
	"Investor Meeting",
	"Client Meeting",
	"HR & Recruitment",
	"User Research Meeting",
	"Product Development Meeting",
	Other,
}

// CategorySet is a closed, ordered set of categories with optional
// descriptions used as prompt hints.
type CategorySet struct {
	order []Category
	index map[string]Category
	hints map[Category]string
}

// NewCategorySet builds a set from labels. Blank and duplicate labels are
// dropped, and Other is appended when missing.
func NewCategorySet(labels []Category, hints map[Category]string) CategorySet {
	s := CategorySet{
		index: make(map[string]Category, len(labels)+1),
		hints: make(map[Category]string, len(hints)),
	}
	for _, l := range append(append([]Category{}, labels...), Other) {
		c := Category(strings.TrimSpace(string(l)))
		if c == "" {
			continue
		}
		key := strings.ToLower(string(c))
		if _, dup := s.index[key]; dup {
			continue
		}
		s.index[key] = c
		s.order = append(s.order, c)
	}
	for c, h := range hints {
		if canon, ok := s.Lookup(string(c)); ok && strings.TrimSpace(h) != "" {
			s.hints[canon] = strings.TrimSpace(h)
		}
	}
	return s
}

// Lookup returns the canonical member matching label, ignoring case and
// surrounding whitespace.
func (s CategorySet) Lookup(label string) (Category, bool) {
	c, ok := s.index[strings.ToLower(strings.TrimSpace(label))]
	return c, ok
}

// Contains reports whether c is a member.
func (s CategorySet) Contains(c Category) bool {
	_, ok := s.Lookup(string(c))
	return ok
}

// Categories returns the members in configured order.
func (s CategorySet) Categories() []Category {
	return append([]Category(nil), s.order...)
}

// Hint returns the description configured for c, if any.
func (s CategorySet) Hint(c Category) string {
	return s.hints[c]
}

// Routes maps categories to destination folder identifiers.
type Routes map[Category]string

// Folder returns the folder mapped for c.
func (r Routes) Folder(c Category) (string, bool) {
	id, ok := r[c]
	return id, ok && id != ""
}

// Resolve returns the folder for c. When c is unmapped and Other is mapped it
// falls back to Other and reports fallback=true. When neither is mapped it
// returns an ErrConfig error.
func (r Routes) Resolve(c Category) (folder string, final Category, fallback bool, err error) {
	if id, ok := r.Folder(c); ok {
		return id, c, false, nil
	}
	if id, ok := r.Folder(Other); ok {
		return id, Other, true, nil
	}
	return "", c, false, fmt.Errorf("no folder mapped for %q: %w", c, ErrConfig)
}

// Destinations returns every mapped folder identifier.
func (r Routes) Destinations() map[string]Category {
	out := make(map[string]Category, len(r))
	for c, id := range r {
		if id != "" {
			out[id] = c
		}
	}
	return out
}
