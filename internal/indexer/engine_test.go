package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/codec"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/storage"
)

const tinyDataset = "123\tsome words A_word and nothing\n" +
	"2\tsome word B_word in this dataset\n" +
	"5\tfamous_phrases to be or not to be\n" +
	"37\tall words such as A_word and B_word are here\n"

type recordingNotifier struct {
	events []kafka.Event
	err    error
}

func (n *recordingNotifier) Publish(_ context.Context, event kafka.Event) error {
	n.events = append(n.events, event)
	return n.err
}

func writeDataset(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "dataset.txt")
	require.NoError(t, os.WriteFile(path, []byte(tinyDataset), 0o644))
	return path
}

func TestBuildDumpLoadQuery(t *testing.T) {
	queries := [][]string{{"a_word"}, {"b_word"}, {"a_word", "b_word"}, {"word_does_not_exist"}}
	want := [][]index.DocID{{37, 123}, {2, 37}, {37}, {}}

	for _, strategy := range codec.Strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			e := NewEngine(storage.NewFileStore(), Options{})

			idx, err := e.Build(ctx, writeDataset(t, dir))
			require.NoError(t, err)

			out := filepath.Join(dir, "inverted.index")
			require.NoError(t, e.Dump(ctx, idx, out, strategy))

			loaded, err := e.Load(ctx, out, strategy)
			require.NoError(t, err)
			assert.True(t, idx.Equal(loaded))

			got, err := e.Query(ctx, loaded, queries)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestBuildMissingDataset(t *testing.T) {
	e := NewEngine(storage.NewFileStore(), Options{})
	_, err := e.Build(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLoadMissingIndex(t *testing.T) {
	m := metrics.New()
	e := NewEngine(storage.NewFileStore(), Options{Metrics: m})
	_, err := e.Load(context.Background(), filepath.Join(t.TempDir(), "absent.index"), codec.StrategyStruct)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotErrorIs(t, err, apperrors.ErrCorrupt)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexReadsTotal.WithLabelValues("struct", "not_found")))
}

func TestLoadTruncatedIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewEngine(storage.NewFileStore(), Options{})
	idx, err := e.Build(ctx, writeDataset(t, dir))
	require.NoError(t, err)

	out := filepath.Join(dir, "inverted.index")
	require.NoError(t, e.Dump(ctx, idx, out, codec.StrategyStruct))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(out, data[:len(data)-3], 0o644))

	_, err = e.Load(ctx, out, codec.StrategyStruct)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCorrupt)
}

func TestDumpWideIDsLeavesNoFile(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(storage.NewFileStore(), Options{})
	idx := e.BuildDocuments(map[index.DocID]string{70000: "wide id"})

	out := filepath.Join(t.TempDir(), "inverted.index")
	err := e.Dump(ctx, idx, out, codec.StrategyStruct)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDestination)
	assert.NoFileExists(t, out)

	require.NoError(t, e.Dump(ctx, idx, out, codec.StrategyJSON))
	assert.FileExists(t, out)
}

func TestDumpInvalidDestination(t *testing.T) {
	e := NewEngine(storage.NewFileStore(), Options{})
	idx := e.BuildDocuments(map[index.DocID]string{1: "hello"})
	err := e.Dump(context.Background(), idx, filepath.Join(t.TempDir(), "missing", "out.index"), codec.StrategyJSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDestination)
}

func TestDumpNotifies(t *testing.T) {
	n := &recordingNotifier{}
	e := NewEngine(storage.NewFileStore(), Options{Notifier: n})
	idx := e.BuildDocuments(map[index.DocID]string{1: "hello world", 2: "world"})

	out := filepath.Join(t.TempDir(), "inverted.index")
	require.NoError(t, e.Dump(context.Background(), idx, out, codec.StrategyStruct))

	require.Len(t, n.events, 1)
	assert.Equal(t, out, n.events[0].Key)
	event, ok := n.events[0].Value.(IndexBuilt)
	require.True(t, ok)
	assert.Equal(t, "struct", event.Strategy)
	assert.Equal(t, 2, event.Terms)
	assert.Equal(t, 2, event.Documents)
}

func TestDumpNotificationFailureIsNotFatal(t *testing.T) {
	m := metrics.New()
	n := &recordingNotifier{err: errors.New("broker down")}
	e := NewEngine(storage.NewFileStore(), Options{Notifier: n, Metrics: m})
	idx := e.BuildDocuments(map[index.DocID]string{1: "hello"})

	out := filepath.Join(t.TempDir(), "inverted.index")
	require.NoError(t, e.Dump(context.Background(), idx, out, codec.StrategyJSON))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsFailed))
}

func TestQueryMetrics(t *testing.T) {
	m := metrics.New()
	e := NewEngine(storage.NewFileStore(), Options{Metrics: m, Workers: 3})
	idx := e.BuildDocuments(map[index.DocID]string{1: "alpha beta", 2: "beta"})

	got, err := e.Query(context.Background(), idx, [][]string{{"beta"}, {}, {"gamma"}})
	require.NoError(t, err)
	assert.Equal(t, [][]index.DocID{{1, 2}, {}, {}}, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("empty_query")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("zero_result")))
}

func TestKeepEmptyTermsOption(t *testing.T) {
	e := NewEngine(storage.NewFileStore(), Options{Tokenizer: tokenizer.Options{KeepEmpty: true}})
	idx := e.BuildDocuments(map[index.DocID]string{1: "trailing."})
	_, ok := idx.Postings("")
	assert.True(t, ok)
}
