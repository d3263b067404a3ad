package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/codec"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/loader"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/storage"
)

// Notifier receives an event after every successful dump.
type Notifier interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// IndexBuilt is the payload announced after an index is persisted.
type IndexBuilt struct {
	Name      string    `json:"name"`
	Strategy  string    `json:"strategy"`
	Terms     int       `json:"terms"`
	Documents int       `json:"documents"`
	Bytes     int       `json:"bytes"`
	BuiltAt   time.Time `json:"built_at"`
}

type Options struct {
	Tokenizer tokenizer.Options
	Workers   int
	Notifier  Notifier
	Metrics   *metrics.Metrics
}

type Engine struct {
	store    storage.Store
	opts     Options
	metrics  *metrics.Metrics
	notifier Notifier
	logger   *slog.Logger
}

func NewEngine(store storage.Store, opts Options) *Engine {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{
		store:    store,
		opts:     opts,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
		logger:   logger.WithComponent("indexer"),
	}
}

// Build loads the dataset at path and indexes every document in it.
func (e *Engine) Build(ctx context.Context, datasetPath string) (*index.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	docs, stats, err := loader.LoadFile(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	e.metrics.LinesSkippedTotal.Add(float64(stats.Skipped))

	idx := e.BuildDocuments(docs)
	e.logger.Info("index built",
		"dataset", datasetPath,
		"lines", stats.Lines,
		"skipped", stats.Skipped,
		"documents", len(docs),
		"terms", idx.Len(),
		"duration", time.Since(start),
	)
	return idx, nil
}

// BuildDocuments indexes an already loaded document mapping.
func (e *Engine) BuildDocuments(docs map[index.DocID]string) *index.Index {
	b := index.NewBuilder(e.opts.Tokenizer)
	for id, text := range docs {
		b.AddDocument(id, text)
	}
	idx := b.Build()
	e.metrics.DocsIndexedTotal.Add(float64(b.DocCount()))
	e.metrics.IndexTerms.Set(float64(idx.Len()))
	return idx
}

// Dump serializes idx with strategy and stores it under name. The whole
// payload is encoded before the store is touched, so a failed encode never
// leaves a partial index behind.
func (e *Engine) Dump(ctx context.Context, idx *index.Index, name string, strategy codec.Strategy) error {
	data, err := codec.Marshal(idx, strategy)
	if err == nil {
		err = e.store.Put(ctx, name, data)
	}
	e.metrics.IndexWritesTotal.WithLabelValues(strategy.String(), statusOf(err)).Inc()
	if err != nil {
		e.logger.Error("index write failed", "name", name, "strategy", strategy, "error", err)
		return fmt.Errorf("writing index %s: %w", name, err)
	}
	e.metrics.IndexBytes.WithLabelValues(strategy.String()).Set(float64(len(data)))
	e.logger.Info("index written",
		"name", name,
		"strategy", strategy,
		"terms", idx.Len(),
		"bytes", len(data),
	)
	e.notify(ctx, IndexBuilt{
		Name:      name,
		Strategy:  strategy.String(),
		Terms:     idx.Len(),
		Documents: idx.DocCount(),
		Bytes:     len(data),
		BuiltAt:   time.Now().UTC(),
	})
	return nil
}

// Load reads the index stored under name and decodes it with strategy.
func (e *Engine) Load(ctx context.Context, name string, strategy codec.Strategy) (*index.Index, error) {
	data, err := e.store.Get(ctx, name)
	var idx *index.Index
	if err == nil {
		idx, err = codec.Unmarshal(data, strategy)
	}
	e.metrics.IndexReadsTotal.WithLabelValues(strategy.String(), statusOf(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("reading index %s: %w", name, err)
	}
	e.metrics.IndexBytes.WithLabelValues(strategy.String()).Set(float64(len(data)))
	e.metrics.IndexTerms.Set(float64(idx.Len()))
	e.logger.Debug("index loaded", "name", name, "strategy", strategy, "terms", idx.Len())
	return idx, nil
}

// Query evaluates each query against idx and returns the results in order.
func (e *Engine) Query(ctx context.Context, idx *index.Index, queries [][]string) ([][]index.DocID, error) {
	start := time.Now()
	results, err := executor.ExecuteBatch(ctx, idx, queries, e.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("executing queries: %w", err)
	}
	e.metrics.QueryLatency.Observe(time.Since(start).Seconds())
	for i, docs := range results {
		e.metrics.QueryResultsCount.Observe(float64(len(docs)))
		switch {
		case len(queries[i]) == 0:
			e.metrics.QueriesTotal.WithLabelValues("empty_query").Inc()
		case len(docs) == 0:
			e.metrics.QueriesTotal.WithLabelValues("zero_result").Inc()
		default:
			e.metrics.QueriesTotal.WithLabelValues("hit").Inc()
		}
	}
	e.logger.Debug("queries executed", "count", len(queries), "duration", time.Since(start))
	return results, nil
}

func (e *Engine) notify(ctx context.Context, event IndexBuilt) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Publish(ctx, kafka.Event{Key: event.Name, Value: event}); err != nil {
		e.metrics.NotificationsFailed.Inc()
		e.logger.Warn("index built notification failed", "name", event.Name, "error", err)
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrCorrupt):
		return "corrupt"
	case errors.Is(err, apperrors.ErrInvalidDestination):
		return "invalid_destination"
	default:
		return "error"
	}
}
