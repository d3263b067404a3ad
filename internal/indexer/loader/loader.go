// Package loader reads tab-delimited datasets of the form
// "<doc_id>\t<text>" into a document mapping. Lines without a parsable
// numeric id before the first tab are skipped.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/logger"
)

// Stats summarises one load.
type Stats struct {
	Lines   int
	Loaded  int
	Skipped int
}

// Load parses every line of r. Text is lower-cased with the trailing line
// break removed; a repeated id keeps the last line.
func Load(r io.Reader) (map[index.DocID]string, Stats, error) {
	docs := make(map[index.DocID]string)
	var stats Stats
	log := logger.WithComponent("loader")
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			stats.Lines++
			id, text, ok := parseLine(line)
			if ok {
				docs[id] = text
				stats.Loaded++
			} else {
				stats.Skipped++
				log.Debug("skipping malformed dataset line", "line", stats.Lines)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("reading dataset: %w", err)
		}
	}
	return docs, stats, nil
}

// LoadFile opens path and loads it. A missing file is ErrNotFound.
func LoadFile(path string) (map[index.DocID]string, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Stats{}, apperrors.Newf(apperrors.ErrNotFound, "dataset %s", path)
		}
		return nil, Stats{}, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func parseLine(line string) (index.DocID, string, bool) {
	line = strings.ToLower(line)
	rawID, text, found := strings.Cut(line, "\t")
	if !found {
		return 0, "", false
	}
	rawID = strings.TrimPrefix(strings.TrimSpace(rawID), "+")
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return 0, "", false
	}
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	return index.DocID(id), text, true
}
