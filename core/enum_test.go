package core_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

const (
	red   color = "red"
	green color = "green"
)

func TestEnumCodec(t *testing.T) {
	codec := core.NewEnumCodec(red, green)

	v, err := codec.Parse("GREEN")
	require.NoError(t, err)
	assert.Equal(t, green, v)

	_, err = codec.Parse("blue")
	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, core.TextCodeUnknownEnumValue, richErr.TextCode)

	dbValue, err := codec.ToDatabase(red)
	require.NoError(t, err)
	assert.Equal(t, "red", dbValue)

	dbValue, err = codec.ToDatabase("")
	require.NoError(t, err)
	assert.Nil(t, dbValue)

	var scanned color
	require.NoError(t, codec.FromDatabase([]byte("Red"), &scanned))
	assert.Equal(t, red, scanned)

	assert.Equal(t, []string{"red", "green"}, codec.Strings())
}

type countries struct {
	Items []string `json:"items"`
}

func TestStaticJSONLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"static/data/countries.json": &fstest.MapFile{Data: []byte(`{"items":["PL","US"]}`)},
		"custom/broken.json":         &fstest.MapFile{Data: []byte(`{`)},
	}

	loader, err := core.NewStaticJSONLoader[countries](fsys, "countries.json")
	require.NoError(t, err)

	data, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"PL", "US"}, data.Items)

	broken, err := core.NewStaticJSONLoader[countries](fs.FS(fsys), "broken.json", "/custom/")
	require.NoError(t, err)
	_, err = broken.Load()
	assert.Error(t, err)

	_, err = core.NewStaticJSONLoader[countries](fsys, "countries.yaml")
	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, core.TextCodeNotJSONFile, richErr.TextCode)
}
