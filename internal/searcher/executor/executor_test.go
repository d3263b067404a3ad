package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/tokenizer"
)

func tinyIndex() *index.Index {
	return index.Build(map[index.DocID]string{
		123: "some words a_word and nothing",
		2:   "some word b_word in this dataset",
		5:   "famous_phrases to be or not to be",
		37:  "all words such as a_word and b_word are here",
	}, tokenizer.Options{})
}

func TestExecuteIntersection(t *testing.T) {
	idx := tinyIndex()
	tests := []struct {
		name  string
		terms []string
		want  []index.DocID
	}{
		{"A_word", []string{"a_word"}, []index.DocID{37, 123}},
		{"B_word", []string{"b_word"}, []index.DocID{2, 37}},
		{"both words", []string{"a_word", "b_word"}, []index.DocID{37}},
		{"word does not exist", []string{"word_does_not_exist"}, []index.DocID{}},
		{"three terms", []string{"some", "words", "a_word"}, []index.DocID{123}},
		{"repeated term", []string{"b_word", "b_word"}, []index.DocID{2, 37}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Execute(idx, tc.terms)
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestExecuteEmptyQuery(t *testing.T) {
	got := Execute(tinyIndex(), nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Execute(tinyIndex(), []string{})
	assert.Empty(t, got)
}

func TestExecuteUnknownTermZeroes(t *testing.T) {
	idx := tinyIndex()
	for _, rest := range [][]string{nil, {"a_word"}, {"some", "words"}} {
		terms := append([]string{"missing"}, rest...)
		assert.Empty(t, Execute(idx, terms), "%v", terms)
		terms = append(append([]string{}, rest...), "missing")
		assert.Empty(t, Execute(idx, terms), "%v", terms)
	}
}

func TestExecuteEmptyPostingListActsAsAbsent(t *testing.T) {
	idx, err := index.FromEntries([]index.TermEntry{
		{Term: "hollow", Postings: index.PostingList{}},
		{Term: "full", Postings: index.PostingList{1, 2}},
	})
	require.NoError(t, err)
	assert.Empty(t, Execute(idx, []string{"hollow"}))
	assert.Empty(t, Execute(idx, []string{"full", "hollow"}))
}

func TestExecuteDoesNotAliasIndex(t *testing.T) {
	idx := tinyIndex()
	got := Execute(idx, []string{"a_word"})
	got[0] = 9999

	postings, _ := idx.Postings("a_word")
	assert.Equal(t, index.PostingList{37, 123}, postings)
}

func TestExecuteBatchPreservesOrder(t *testing.T) {
	idx := tinyIndex()
	queries := [][]string{
		{"a_word"},
		{"b_word"},
		{"a_word", "b_word"},
		{"word_does_not_exist"},
	}
	want := [][]index.DocID{{37, 123}, {2, 37}, {37}, {}}

	for _, workers := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			got, err := ExecuteBatch(context.Background(), idx, queries, workers)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestExecuteBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecuteBatch(ctx, tinyIndex(), [][]string{{"a_word"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseQuery(t *testing.T) {
	assert.Equal(t, []string{"a_word", "b_word"}, ParseQuery("  a_word\tb_word \n"))
	assert.Empty(t, ParseQuery("   "))
}

func BenchmarkExecute(b *testing.B) {
	docs := make(map[index.DocID]string, 20000)
	terms := []string{"distributed", "search", "analytics", "platform", "indexing", "query"}
	for i := 0; i < 20000; i++ {
		docs[index.DocID(i)] = fmt.Sprintf("%s %s %s",
			terms[i%len(terms)], terms[(i+1)%len(terms)], terms[(i*7)%len(terms)])
	}
	idx := index.Build(docs, tokenizer.Options{})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Execute(idx, []string{"search", "analytics"})
	}
}
