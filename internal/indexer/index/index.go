// Package index holds the in-memory inverted index: a mapping from term to
// the sorted set of documents containing it. An Index is immutable once
// constructed; Builder produces new ones.
package index

import (
	"fmt"
)

// Index maps terms to posting lists and remembers the order terms were
// added in. Built indexes order terms ascending; decoded indexes keep the
// order of the serialized input.
type Index struct {
	terms    []string
	postings map[string]PostingList
}

// Empty returns an index with no terms.
func Empty() *Index {
	return &Index{postings: make(map[string]PostingList)}
}

// FromEntries builds an index from entries in the given order. Each posting
// list must already be sorted and unique; a repeated term is an error.
func FromEntries(entries []TermEntry) (*Index, error) {
	idx := &Index{
		terms:    make([]string, 0, len(entries)),
		postings: make(map[string]PostingList, len(entries)),
	}
	for _, e := range entries {
		if _, dup := idx.postings[e.Term]; dup {
			return nil, fmt.Errorf("duplicate term %q", e.Term)
		}
		idx.terms = append(idx.terms, e.Term)
		idx.postings[e.Term] = e.Postings
	}
	return idx, nil
}

// Len returns the number of distinct terms.
func (x *Index) Len() int {
	return len(x.terms)
}

// Terms returns the terms in index order.
func (x *Index) Terms() []string {
	out := make([]string, len(x.terms))
	copy(out, x.terms)
	return out
}

// Postings returns the posting list for term. The returned slice is shared
// with the index and must not be modified.
func (x *Index) Postings(term string) (PostingList, bool) {
	p, ok := x.postings[term]
	return p, ok
}

// Entries returns every term with its postings, in index order.
func (x *Index) Entries() []TermEntry {
	entries := make([]TermEntry, 0, len(x.terms))
	for _, term := range x.terms {
		entries = append(entries, TermEntry{Term: term, Postings: x.postings[term]})
	}
	return entries
}

// DocCount returns the number of distinct documents referenced.
func (x *Index) DocCount() int {
	seen := make(map[DocID]struct{})
	for _, p := range x.postings {
		for _, id := range p {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// MaxDocID returns the largest document id in the index.
func (x *Index) MaxDocID() DocID {
	var max DocID
	for _, p := range x.postings {
		if m := p.Max(); m > max {
			max = m
		}
	}
	return max
}

// Equal reports whether both indexes hold the same terms with the same
// document sets. Term order is ignored.
func (x *Index) Equal(other *Index) bool {
	if x == nil || other == nil {
		return x == other
	}
	if len(x.postings) != len(other.postings) {
		return false
	}
	for term, p := range x.postings {
		q, ok := other.postings[term]
		if !ok || len(p) != len(q) {
			return false
		}
		for i := range p {
			if p[i] != q[i] {
				return false
			}
		}
	}
	return true
}
