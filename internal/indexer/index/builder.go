package index

import (
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/tokenizer"
)

// Builder accumulates term occurrences and snapshots them into an Index.
type Builder struct {
	mu       sync.RWMutex
	opts     tokenizer.Options
	index    map[string]map[DocID]struct{}
	docCount int
}

func NewBuilder(opts tokenizer.Options) *Builder {
	return &Builder{
		opts:  opts,
		index: make(map[string]map[DocID]struct{}),
	}
}

// AddDocument records every term of text as occurring in docID. Repeated
// occurrences are idempotent.
func (b *Builder) AddDocument(docID DocID, text string) {
	terms := tokenizer.Split(text, b.opts)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, term := range terms {
		docs, exists := b.index[term]
		if !exists {
			docs = make(map[DocID]struct{})
			b.index[term] = docs
		}
		docs[docID] = struct{}{}
	}
	b.docCount++
}

// DocCount returns how many documents have been added.
func (b *Builder) DocCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.docCount
}

// Build returns a new Index with terms sorted ascending and every posting
// list sorted. Later AddDocument calls do not affect it.
func (b *Builder) Build() *Index {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := &Index{
		terms:    make([]string, 0, len(b.index)),
		postings: make(map[string]PostingList, len(b.index)),
	}
	for term, docs := range b.index {
		postings := make(PostingList, 0, len(docs))
		for id := range docs {
			postings = append(postings, id)
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i] < postings[j]
		})
		idx.terms = append(idx.terms, term)
		idx.postings[term] = postings
	}
	sort.Strings(idx.terms)
	return idx
}

// Build indexes every document of docs in one pass.
func Build(docs map[DocID]string, opts tokenizer.Options) *Index {
	b := NewBuilder(opts)
	for id, text := range docs {
		b.AddDocument(id, text)
	}
	return b.Build()
}
