package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/codec"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/invindex/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/storage"
)

func strategyFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "strategy",
		Aliases: []string{"s"},
		Usage:   "Serialization strategy (struct, json); defaults to indexer.defaultStrategy",
	}
}

func buildCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build an inverted index from a dataset and store it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dataset",
				Aliases: []string{"d"},
				Value:   defaultDataset,
				Usage:   "Tab-separated dataset file (<id>\\t<text> per line)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   defaultIndex,
				Usage:   "Name to store the index under (a path for the file backend)",
			},
			strategyFlag(),
		},
		Action: s.build,
	}
}

func queryCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Run AND queries against a stored index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Value:   defaultIndex,
				Usage:   "Name of the stored index",
			},
			strategyFlag(),
			&cli.StringSliceFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query terms (quoted or as trailing words); repeat for several queries",
			},
			&cli.StringFlag{
				Name:  "query-file",
				Usage: "File with one query per line, or - for stdin",
			},
			&cli.StringFlag{
				Name:  "query-file-encoding",
				Value: "utf8",
				Usage: "Encoding of --query-file (utf8, cp1251)",
			},
		},
		Action: s.query,
	}
}

func (s *session) strategy(c *cli.Context) (codec.Strategy, error) {
	name := c.String("strategy")
	if name == "" {
		name = s.cfg.Indexer.DefaultStrategy
	}
	return codec.ParseStrategy(name)
}

// engine opens the configured store and returns an Engine over it together
// with a cleanup func that releases the store and any notifier.
func (s *session) engine(ctx context.Context, notify bool) (*indexer.Engine, func(), error) {
	store, err := storage.New(ctx, s.cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := indexer.Options{
		Tokenizer: tokenizer.Options{KeepEmpty: s.cfg.Indexer.KeepEmptyTerms},
		Workers:   s.cfg.Search.Workers,
		Metrics:   s.metrics,
	}
	var producer *kafka.Producer
	if notify && s.cfg.Kafka.Enabled {
		producer = kafka.NewProducer(s.cfg.Kafka, s.cfg.Kafka.Topics.IndexBuilt)
		opts.Notifier = producer
	}
	log := logger.WithComponent("cli")
	cleanup := func() {
		if producer != nil {
			if err := producer.Close(); err != nil {
				log.Warn("closing kafka producer", "error", err)
			}
		}
		if err := store.Close(); err != nil {
			log.Warn("closing index store", "error", err)
		}
	}
	return indexer.NewEngine(store, opts), cleanup, nil
}

func (s *session) build(c *cli.Context) error {
	strategy, err := s.strategy(c)
	if err != nil {
		return err
	}
	e, cleanup, err := s.engine(c.Context, true)
	if err != nil {
		return err
	}
	defer cleanup()

	idx, err := e.Build(c.Context, c.String("dataset"))
	if err != nil {
		return err
	}
	return e.Dump(c.Context, idx, c.String("output"), strategy)
}

func (s *session) query(c *cli.Context) error {
	strategy, err := s.strategy(c)
	if err != nil {
		return err
	}
	queries, err := s.readQueries(c)
	if err != nil {
		return err
	}
	e, cleanup, err := s.engine(c.Context, false)
	if err != nil {
		return err
	}
	defer cleanup()

	idx, err := e.Load(c.Context, c.String("index"), strategy)
	if err != nil {
		return err
	}
	results, err := e.Query(c.Context, idx, queries)
	if err != nil {
		return err
	}
	return writeResults(s.stdout, results)
}

func (s *session) readQueries(c *cli.Context) ([][]string, error) {
	inline := c.StringSlice("query")
	path := c.String("query-file")
	extra := c.Args().Slice()
	switch {
	case len(inline) > 0 && path != "":
		return nil, apperrors.New(apperrors.ErrInvalidInput, "--query and --query-file are mutually exclusive")
	case len(inline) == 0 && path == "":
		return nil, apperrors.New(apperrors.ErrInvalidInput, "one of --query or --query-file is required")
	case len(inline) > 0:
		return inlineQueries(inline, extra)
	case len(extra) > 0:
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "unexpected arguments %q", extra)
	}

	var r io.Reader = s.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, apperrors.Newf(apperrors.ErrNotFound, "query file %s", path)
			}
			return nil, fmt.Errorf("opening query file: %w", err)
		}
		defer f.Close()
		r = f
	}
	r, err := decodeQueryFile(r, c.String("query-file-encoding"))
	if err != nil {
		return nil, err
	}
	return readQueryLines(r)
}

// inlineQueries turns each --query value into one query. Words left after
// the last --query ("--query a b") belong to that query. Flag parsing stops
// at the first positional word, so a flag among them was not applied and is
// rejected rather than read as a term.
func inlineQueries(inline, extra []string) ([][]string, error) {
	for _, arg := range extra {
		if strings.HasPrefix(arg, "-") {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "flag %s after query terms; put flags before --query", arg)
		}
	}
	queries := make([][]string, len(inline))
	for i, line := range inline {
		queries[i] = executor.ParseQuery(line)
	}
	last := len(queries) - 1
	for _, arg := range extra {
		queries[last] = append(queries[last], executor.ParseQuery(arg)...)
	}
	return queries, nil
}

func decodeQueryFile(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
		return r, nil
	case "cp1251", "windows-1251":
		return charmap.Windows1251.NewDecoder().Reader(r), nil
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "unsupported query file encoding %q", encoding)
	}
}

func readQueryLines(r io.Reader) ([][]string, error) {
	var queries [][]string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		queries = append(queries, executor.ParseQuery(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}
	return queries, nil
}

// writeResults prints one line per query: matching ids ascending, joined
// with commas. A query with no matches prints an empty line.
func writeResults(w io.Writer, results [][]index.DocID) error {
	bw := bufio.NewWriter(w)
	for _, docs := range results {
		for i, id := range docs {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(strconv.FormatUint(uint64(id), 10))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
