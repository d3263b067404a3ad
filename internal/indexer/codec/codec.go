// Package codec serializes inverted indexes. Two strategies share one
// contract: Decode(Encode(idx)) yields an index equal to idx.
//
//	struct: [u32 LE header length][JSON header [[term, count], ...]][u16 LE doc ids]
//	json:   {"term": [doc_id, ...], ...}
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/invindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
)

// Strategy names a serialization format.
type Strategy string

const (
	StrategyStruct Strategy = "struct"
	StrategyJSON   Strategy = "json"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{StrategyStruct, StrategyJSON}

func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy converts a user-supplied name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyStruct, StrategyJSON:
		return Strategy(name), nil
	default:
		return "", apperrors.Newf(apperrors.ErrInvalidInput, "unknown strategy %q (want struct or json)", name)
	}
}

// Codec writes and reads one serialization format.
type Codec interface {
	Strategy() Strategy
	Encode(w io.Writer, idx *index.Index) error
	Decode(r io.Reader) (*index.Index, error)
}

// For returns the codec implementing strategy.
func For(strategy Strategy) (Codec, error) {
	switch strategy {
	case StrategyStruct:
		return StructCodec{}, nil
	case StrategyJSON:
		return JSONCodec{}, nil
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "unknown strategy %q", strategy)
	}
}

// Marshal encodes idx into a byte slice. Nothing is returned on failure, so
// callers never persist a partial index.
func Marshal(idx *index.Index, strategy Strategy) ([]byte, error) {
	c, err := For(strategy)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Encode(&buf, idx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data written with strategy.
func Unmarshal(data []byte, strategy Strategy) (*index.Index, error) {
	c, err := For(strategy)
	if err != nil {
		return nil, err
	}
	return c.Decode(bytes.NewReader(data))
}

func writeAll(w io.Writer, data []byte, what string) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w: %w", what, apperrors.ErrInvalidDestination, err)
	}
	return nil
}
