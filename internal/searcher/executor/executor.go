// Package executor evaluates conjunctive queries against a loaded index.
package executor

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
)

// ParseQuery splits one query line into terms on whitespace.
func ParseQuery(line string) []string {
	return strings.Fields(line)
}

// Execute returns the documents that contain every term. No terms, an
// unknown term, or a term with an empty posting list all yield an empty
// result. The result is sorted ascending and never shares memory with idx.
func Execute(idx *index.Index, terms []string) []index.DocID {
	if len(terms) == 0 {
		return []index.DocID{}
	}
	lists := make([]index.PostingList, 0, len(terms))
	for _, term := range terms {
		postings, ok := idx.Postings(term)
		if !ok || len(postings) == 0 {
			return []index.DocID{}
		}
		lists = append(lists, postings)
	}
	sort.Slice(lists, func(i, j int) bool {
		return len(lists[i]) < len(lists[j])
	})

	candidates := []index.DocID(lists[0].Clone())
	for _, postings := range lists[1:] {
		candidates = intersectSorted(candidates, postings)
		if len(candidates) == 0 {
			break
		}
	}
	return candidates
}

// intersectSorted keeps the elements of a that also appear in b, reusing
// a's backing array.
func intersectSorted(a []index.DocID, b index.PostingList) []index.DocID {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// ExecuteBatch evaluates each query independently and returns results in
// query order. With workers > 1 queries run concurrently against the shared,
// read-only index.
func ExecuteBatch(ctx context.Context, idx *index.Index, queries [][]string, workers int) ([][]index.DocID, error) {
	results := make([][]index.DocID, len(queries))
	if workers <= 1 {
		for i, terms := range queries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = Execute(idx, terms)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, terms := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Execute(idx, terms)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
