package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
)

// JSONCodec writes the index as a JSON object of term to id list. Ids are
// not range restricted.
type JSONCodec struct{}

func (JSONCodec) Strategy() Strategy {
	return StrategyJSON
}

func (JSONCodec) Encode(w io.Writer, idx *index.Index) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range idx.Entries() {
		if i > 0 {
			buf.WriteString(", ")
		}
		appendASCIIString(&buf, entry.Term)
		buf.WriteString(": [")
		for j, id := range entry.Postings {
			if j > 0 {
				buf.WriteString(", ")
			}
			appendUint(&buf, uint64(id))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return writeAll(w, buf.Bytes(), "json index")
}

// Decode streams the object so the term order of the input is kept.
func (JSONCodec) Decode(r io.Reader) (*index.Index, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	entries := make([]index.TermEntry, 0)
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, jsonCorrupt(err)
		}
		term, ok := tok.(string)
		if !ok {
			return nil, apperrors.Corruptf("expected term key, got %v", tok)
		}
		if _, dup := seen[term]; dup {
			return nil, apperrors.Corruptf("duplicate term %q", term)
		}
		seen[term] = struct{}{}

		var raw *[]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, apperrors.Corruptf("postings for term %q: %v", term, err)
		}
		if raw == nil {
			return nil, apperrors.Corruptf("postings for term %q are null", term)
		}
		ids := make([]index.DocID, 0, len(*raw))
		for _, elem := range *raw {
			id, ok := parseDocID(elem)
			if !ok {
				return nil, apperrors.Corruptf("term %q has invalid document id %s", term, elem)
			}
			ids = append(ids, id)
		}
		postings, dup := index.Normalize(ids)
		if dup {
			return nil, apperrors.Corruptf("duplicate document id in postings for term %q", term)
		}
		entries = append(entries, index.TermEntry{Term: term, Postings: postings})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, jsonCorrupt(err)
		}
		return nil, apperrors.Corruptf("unexpected data after the index object")
	}

	idx, err := index.FromEntries(entries)
	if err != nil {
		return nil, apperrors.Corruptf("%v", err)
	}
	return idx, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return jsonCorrupt(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return apperrors.Corruptf("expected %q, got %v", want, tok)
	}
	return nil
}

func jsonCorrupt(err error) error {
	var syntax *json.SyntaxError
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &syntax) {
		return apperrors.Corruptf("parsing json index: %v", err)
	}
	return fmt.Errorf("reading json index: %w", err)
}

// parseDocID accepts only a bare non-negative integer literal. Strings,
// nulls, signs, fractions and exponents are rejected.
func parseDocID(raw json.RawMessage) (index.DocID, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] < '0' || raw[0] > '9' {
		return 0, false
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return index.DocID(id), true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
