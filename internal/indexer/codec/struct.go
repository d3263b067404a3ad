package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
)

const (
	// LengthPrefixSize is the width of the little-endian header length.
	LengthPrefixSize = 4
	// DocIDSize is the width of one packed document id.
	DocIDSize = 2
	// MaxStructDocID is the largest id the struct format can hold.
	MaxStructDocID = math.MaxUint16
	// maxPostingCount bounds a header count: ids are unique and 16-bit.
	maxPostingCount = MaxStructDocID + 1
)

// StructCodec packs document ids as fixed-width 16-bit integers behind a
// length-prefixed JSON header of (term, count) pairs.
type StructCodec struct{}

func (StructCodec) Strategy() Strategy {
	return StrategyStruct
}

// Encode validates every id against the 16-bit limit before writing any
// byte, then writes the length prefix, the header and the id stream.
func (StructCodec) Encode(w io.Writer, idx *index.Index) error {
	entries := idx.Entries()
	total := 0
	for _, entry := range entries {
		if max := entry.Postings.Max(); max > MaxStructDocID {
			return apperrors.Newf(apperrors.ErrInvalidDestination,
				"term %q references document %d, struct strategy holds ids up to %d",
				entry.Term, max, MaxStructDocID)
		}
		total += len(entry.Postings)
	}

	header := encodeStructHeader(entries)
	if uint64(len(header)) > math.MaxUint32 {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "header of %d bytes exceeds the 4-byte length prefix", len(header))
	}
	prefix := make([]byte, LengthPrefixSize)
	binary.LittleEndian.PutUint32(prefix, uint32(len(header)))
	if err := writeAll(w, prefix, "header length"); err != nil {
		return err
	}
	if err := writeAll(w, header, "header"); err != nil {
		return err
	}

	ids := make([]byte, 0, total*DocIDSize)
	for _, entry := range entries {
		for _, id := range entry.Postings {
			ids = binary.LittleEndian.AppendUint16(ids, uint16(id))
		}
	}
	return writeAll(w, ids, "document ids")
}

// Decode reads exactly the bytes the header declares. Any shortfall,
// malformed header or trailing data is ErrCorrupt.
func (StructCodec) Decode(r io.Reader) (*index.Index, error) {
	prefix := make([]byte, LengthPrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, shortRead(err, "header length")
	}
	headerLen := binary.LittleEndian.Uint32(prefix)

	var header bytes.Buffer
	n, err := io.CopyN(&header, r, int64(headerLen))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.Corruptf("header declares %d bytes, only %d present", headerLen, n)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	pairs, err := decodeStructHeader(header.Bytes())
	if err != nil {
		return nil, err
	}

	entries := make([]index.TermEntry, 0, len(pairs))
	for _, pair := range pairs {
		raw := make([]byte, pair.count*DocIDSize)
		if _, err := io.ReadFull(r, raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, apperrors.Corruptf("postings for term %q truncated: want %d ids", pair.term, pair.count)
			}
			return nil, fmt.Errorf("reading postings for term %q: %w", pair.term, err)
		}
		ids := make([]index.DocID, pair.count)
		for i := range ids {
			ids[i] = index.DocID(binary.LittleEndian.Uint16(raw[i*DocIDSize:]))
		}
		postings, dup := index.Normalize(ids)
		if dup {
			return nil, apperrors.Corruptf("duplicate document id in postings for term %q", pair.term)
		}
		entries = append(entries, index.TermEntry{Term: pair.term, Postings: postings})
	}

	var extra [1]byte
	if _, err := io.ReadFull(r, extra[:]); err == nil {
		return nil, apperrors.Corruptf("unexpected data after the last posting list")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading past postings: %w", err)
	}

	idx, err := index.FromEntries(entries)
	if err != nil {
		return nil, apperrors.Corruptf("%v", err)
	}
	return idx, nil
}

type headerPair struct {
	term  string
	count int
}

// encodeStructHeader renders [["term", count], ...] with ", " separators.
func encodeStructHeader(entries []index.TermEntry) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, entry := range entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteByte('[')
		appendASCIIString(&buf, entry.Term)
		buf.WriteString(", ")
		appendUint(&buf, uint64(len(entry.Postings)))
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func decodeStructHeader(data []byte) ([]headerPair, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Corruptf("parsing header: %v", err)
	}
	if raw == nil {
		return nil, apperrors.Corruptf("header is not an array")
	}
	pairs := make([]headerPair, 0, len(raw))
	for i, item := range raw {
		if len(item) != 2 {
			return nil, apperrors.Corruptf("header entry %d has %d fields, want 2", i, len(item))
		}
		if isNull(item[0]) || isNull(item[1]) {
			return nil, apperrors.Corruptf("header entry %d has a null field", i)
		}
		var pair headerPair
		if err := json.Unmarshal(item[0], &pair.term); err != nil {
			return nil, apperrors.Corruptf("header entry %d term: %v", i, err)
		}
		var count int64
		if err := json.Unmarshal(item[1], &count); err != nil {
			return nil, apperrors.Corruptf("header entry %d count: %v", i, err)
		}
		if count < 0 || count > maxPostingCount {
			return nil, apperrors.Corruptf("header entry %d count %d out of range", i, count)
		}
		pair.count = int(count)
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func shortRead(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.Corruptf("%s truncated", what)
	}
	return fmt.Errorf("reading %s: %w", what, err)
}
