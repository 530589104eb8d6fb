package manufacturing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultOrderNumberPrefix prefixes generated manufacturing order numbers
const DefaultOrderNumberPrefix = "MO"

// FormatOrderNumber renders sequence n as PREFIX-NNN (at least three digits)
func FormatOrderNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// ParseOrderNumber extracts the numeric suffix of an order number.
// Returns false if id does not carry prefix or the suffix is not numeric.
func ParseOrderNumber(prefix, id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextOrderNumber returns the number following the highest existing sequence.
// A zero highest sequence yields PREFIX-001.
func NextOrderNumber(prefix string, highest int) string {
	return FormatOrderNumber(prefix, highest+1)
}

// OrderNumberGenerator issues human-readable manufacturing order ids
type OrderNumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// SequenceSource reports the highest numeric suffix already used for a prefix
type SequenceSource interface {
	MaxOrderSequence(ctx context.Context, prefix string) (int, error)
}

// SequentialOrderNumberGenerator computes max existing suffix + 1
type SequentialOrderNumberGenerator struct {
	prefix string
	source SequenceSource
}

// NewSequentialOrderNumberGenerator creates a generator reading the highest suffix from source
func NewSequentialOrderNumberGenerator(prefix string, source SequenceSource) *SequentialOrderNumberGenerator {
	if prefix == "" {
		prefix = DefaultOrderNumberPrefix
	}
	return &SequentialOrderNumberGenerator{prefix: prefix, source: source}
}

// Next returns the next order number
func (g *SequentialOrderNumberGenerator) Next(ctx context.Context) (string, error) {
	highest, err := g.source.MaxOrderSequence(ctx, g.prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read order sequence: %w", err)
	}
	return NextOrderNumber(g.prefix, highest), nil
}

// Prefix returns the configured prefix
func (g *SequentialOrderNumberGenerator) Prefix() string {
	return g.prefix
}
