package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// TermSet is a set of lower-cased root forms.
type TermSet map[string]struct{}

// NewTermSet builds a set from the given terms.
func NewTermSet(terms ...string) TermSet {
	s := make(TermSet, len(terms))
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add inserts a term, lower-casing it first.
func (s TermSet) Add(term string) {
	s[strings.ToLower(term)] = struct{}{}
}

// Has reports membership.
func (s TermSet) Has(term string) bool {
	_, ok := s[strings.ToLower(term)]
	return ok
}

// Len returns the number of distinct terms.
func (s TermSet) Len() int {
	return len(s)
}

// Sorted returns the members in lexical order.
func (s TermSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array, never null.
func (s TermSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of terms.
func (s *TermSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = NewTermSet(list...)
	return nil
}
