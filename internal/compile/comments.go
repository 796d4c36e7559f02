package compile

import (
	"sort"
)

// CommentStore keeps the legal comments (`/*! ... */`, `//! ...`) lifted out
// of each module so the renderer can place them in the bundle header.
type CommentStore struct {
	byModule map[string][]string
}

func NewCommentStore() *CommentStore {
	return &CommentStore{byModule: make(map[string][]string)}
}

// Add appends a comment for module.
func (s *CommentStore) Add(module, text string) {
	s.byModule[module] = append(s.byModule[module], text)
}

// For returns the comments of module in source order.
func (s *CommentStore) For(module string) []string {
	return s.byModule[module]
}

// Legal returns every stored comment, modules in id order, identical texts
// kept once.
func (s *CommentStore) Legal() []string {
	modules := make([]string, 0, len(s.byModule))
	for m := range s.byModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	seen := make(map[string]struct{})
	var out []string
	for _, m := range modules {
		for _, c := range s.byModule[m] {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
