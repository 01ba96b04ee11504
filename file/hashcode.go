package file

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	"github.com/goliatone/go-security/core"
)

// HashCodeGenerator creates and checks codes made of random alphanumeric
// blocks joined by a separator, e.g. aB3kd-9xQ2m-L0pPz-7hTr1.
type HashCodeGenerator struct {
	separator string
	count     int
	length    int
	pattern   *regexp.Regexp
}

// NewHashCodeGenerator validates cfg and compiles the matching pattern.
func NewHashCodeGenerator(cfg config.HashCode) (*HashCodeGenerator, error) {
	if cfg.CountOfSequences < 1 || cfg.SequenceLength < 1 {
		return nil, errors.New("hash code sequences count and length must be greater than 0", errors.CategoryValidation).
			WithMetadata(map[string]any{
				"count_of_sequences": cfg.CountOfSequences,
				"sequence_length":    cfg.SequenceLength,
			})
	}

	block := fmt.Sprintf("[a-zA-Z0-9]{%d}", cfg.SequenceLength)
	expr := "^" + block
	if cfg.CountOfSequences > 1 {
		expr += fmt.Sprintf("(%s%s){%d}", regexp.QuoteMeta(cfg.Separator), block, cfg.CountOfSequences-1)
	}
	expr += "$"

	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to compile hash code pattern")
	}

	return &HashCodeGenerator{
		separator: cfg.Separator,
		count:     cfg.CountOfSequences,
		length:    cfg.SequenceLength,
		pattern:   pattern,
	}, nil
}

// Generate returns a new random code.
func (g *HashCodeGenerator) Generate() string {
	blocks := make([]string, g.count)
	for i := range blocks {
		blocks[i] = core.RandomAlphanumeric(g.length)
	}
	return strings.Join(blocks, g.separator)
}

// IsValid reports whether code has the configured layout.
func (g *HashCodeGenerator) IsValid(code string) bool {
	return g.pattern.MatchString(code)
}

// Check returns ErrHashCodeFormat when code is not valid.
func (g *HashCodeGenerator) Check(code string) error {
	if g.IsValid(code) {
		return nil
	}
	return ErrHashCodeFormat.Clone().WithMetadata(map[string]any{"hash_code": code})
}
