package file_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	"github.com/goliatone/go-security/file"
	"github.com/goliatone/go-security/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultHashCode() config.HashCode {
	return config.HashCode{Separator: "-", CountOfSequences: 4, SequenceLength: 5}
}

func TestHashCodeGenerate(t *testing.T) {
	g, err := file.NewHashCodeGenerator(defaultHashCode())
	require.NoError(t, err)

	code := g.Generate()
	blocks := strings.Split(code, "-")
	require.Len(t, blocks, 4)
	for _, block := range blocks {
		assert.Len(t, block, 5)
	}
	assert.True(t, g.IsValid(code))
	assert.NotEqual(t, code, g.Generate())
}

func TestHashCodeIsValid(t *testing.T) {
	g, err := file.NewHashCodeGenerator(defaultHashCode())
	require.NoError(t, err)

	tests := []struct {
		code  string
		valid bool
	}{
		{"aB3kd-9xQ2m-L0pPz-7hTr1", true},
		{"aB3kd-9xQ2m-L0pPz", false},
		{"aB3kd-9xQ2m-L0pPz-7hTr1-abcde", false},
		{"aB3k-9xQ2m-L0pPz-7hTr1", false},
		{"aB3kd_9xQ2m_L0pPz_7hTr1", false},
		{"aB3k!-9xQ2m-L0pPz-7hTr1", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, g.IsValid(tt.code), tt.code)
	}

	err = g.Check("nope")
	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, i18n.KeyHashCodeFormat, richErr.TextCode)
	assert.NoError(t, g.Check("aB3kd-9xQ2m-L0pPz-7hTr1"))
}

func TestHashCodeSeparatorIsLiteral(t *testing.T) {
	g, err := file.NewHashCodeGenerator(config.HashCode{Separator: ".", CountOfSequences: 2, SequenceLength: 3})
	require.NoError(t, err)

	assert.True(t, g.IsValid("abc.123"))
	assert.False(t, g.IsValid("abcx123"))
}

func TestHashCodeSingleBlock(t *testing.T) {
	g, err := file.NewHashCodeGenerator(config.HashCode{Separator: "-", CountOfSequences: 1, SequenceLength: 8})
	require.NoError(t, err)

	code := g.Generate()
	assert.Len(t, code, 8)
	assert.True(t, g.IsValid(code))
}

func TestNewHashCodeGeneratorRejectsConfig(t *testing.T) {
	_, err := file.NewHashCodeGenerator(config.HashCode{Separator: "-", CountOfSequences: 0, SequenceLength: 5})
	assert.Error(t, err)

	_, err = file.NewHashCodeGenerator(config.HashCode{Separator: "-", CountOfSequences: 4, SequenceLength: 0})
	assert.Error(t, err)
}
