package gfx_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	"github.com/goliatone/go-security/file"
	"github.com/goliatone/go-security/file/sftp"
	"github.com/goliatone/go-security/gfx"
	"github.com/goliatone/go-security/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ gfx.RemoteStore = (*sftp.Connector)(nil)

const testHashCode = "aB3kd-9xQ2m-L0pPz-7hTr1"

type memoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string][]byte{}}
}

func (m *memoryStore) AppServerPath() string {
	return "https://static.example.com/app/"
}

func (m *memoryStore) WriteFile(_ context.Context, dir, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.files[path.Join(dir, name)] = data
	return nil
}

func (m *memoryStore) RemoveByPrefix(_ context.Context, dir, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for key := range m.files {
		if path.Dir(key) == dir && strings.HasPrefix(path.Base(key), prefix) {
			delete(m.files, key)
		}
	}
	return nil
}

func (m *memoryStore) RemoveDir(_ context.Context, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for key := range m.files {
		if strings.HasPrefix(key, dir+"/") {
			delete(m.files, key)
		}
	}
	return nil
}

func (m *memoryStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for key := range m.files {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func newService(t *testing.T, staticPath string) (*gfx.UserImageService, *memoryStore) {
	t.Helper()

	cfg := gfxConfig("#029489")
	cfg.StaticImagesContentPath = staticPath

	hashCodes, err := file.NewHashCodeGenerator(config.HashCode{Separator: "-", CountOfSequences: 4, SequenceLength: 5})
	require.NoError(t, err)

	store := newMemoryStore()
	service := gfx.NewUserImageService(newGenerator(t, cfg), store, hashCodes, cfg,
		gfx.WithServiceLogger(nopLogger{}),
	)
	return service, store
}

func TestGenerateAndSaveCreatesDirectory(t *testing.T) {
	service, store := newService(t, "images")

	out, err := service.GenerateAndSave(context.Background(), payload(), gfx.PNG)
	require.NoError(t, err)

	assert.Regexp(t, `^[a-zA-Z0-9]{5}(-[a-zA-Z0-9]{5}){3}$`, out.UserHashCode)
	assert.Equal(t, "#029489", out.Background)
	assert.NotEmpty(t, out.Bytes)

	location := regexp.MustCompile(`^https://static\.example\.com/app/images/user42_` +
		regexp.QuoteMeta(out.UserHashCode) + `/avatar_[0-9]{16}\.png$`)
	assert.Regexp(t, location, out.Location)

	keys := store.keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "images/user42_"+out.UserHashCode, path.Dir(keys[0]))
	assert.Equal(t, path.Base(out.Location), path.Base(keys[0]))
}

func TestGenerateAndSaveReplacesExistingImage(t *testing.T) {
	service, store := newService(t, "")
	ctx := context.Background()

	p := payload()
	p.UserHashCode = testHashCode
	first, err := service.GenerateAndSave(ctx, p, gfx.PNG)
	require.NoError(t, err)

	banner := p
	banner.ImageUniquePrefix = "banner"
	_, err = service.GenerateAndSave(ctx, banner, gfx.PNG)
	require.NoError(t, err)

	second, err := service.GenerateAndSave(ctx, p, gfx.PNG)
	require.NoError(t, err)

	assert.Equal(t, testHashCode, second.UserHashCode)
	assert.True(t, strings.HasPrefix(second.Location, "https://static.example.com/app/user42_"+testHashCode+"/avatar_"))

	keys := store.keys()
	require.Len(t, keys, 2)
	assert.NotContains(t, keys, "user42_"+testHashCode+"/"+path.Base(first.Location))
	assert.Contains(t, keys, "user42_"+testHashCode+"/"+path.Base(second.Location))
}

func TestGenerateAndSaveRejectsHashCode(t *testing.T) {
	service, store := newService(t, "")

	p := payload()
	p.UserHashCode = "../../etc"
	_, err := service.GenerateAndSave(context.Background(), p, gfx.PNG)

	assert.True(t, hasTextCode(err, i18n.KeyHashCodeFormat))
	assert.Empty(t, store.keys())
}

func TestGenerateAndSaveStoreFailure(t *testing.T) {
	service, store := newService(t, "")
	store.fail = sftp.ErrSSHInactive.Clone()

	_, err := service.GenerateAndSave(context.Background(), payload(), gfx.PNG)

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, i18n.KeyExternalFileServer, richErr.TextCode)
	assert.Equal(t, http.StatusServiceUnavailable, richErr.Code)
	assert.Equal(t, "write", richErr.Metadata["operation"])
}

func encodedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x11, G: 0x97, B: 0xec, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveUserImageResizes(t *testing.T) {
	service, store := newService(t, "")

	out, err := service.SaveUserImage(context.Background(), gfx.SenderPayload{
		Bytes:             encodedPNG(t, 200, 120),
		PreferredWidth:    40,
		PreferredHeight:   30,
		UserID:            "7",
		ImageUniquePrefix: "avatar",
	}, gfx.PNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out.Bytes))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
	c := rgbaAt(img, 20, 15)
	assert.InDelta(t, 0x11, int(c.R), 1)
	assert.InDelta(t, 0x97, int(c.G), 1)
	assert.InDelta(t, 0xec, int(c.B), 1)

	require.Len(t, store.keys(), 1)
	assert.True(t, strings.HasPrefix(store.keys()[0], "user7_"+out.UserHashCode+"/avatar_"))
}

func TestSaveUserImageRejectsInput(t *testing.T) {
	service, store := newService(t, "")
	ctx := context.Background()

	_, err := service.SaveUserImage(ctx, gfx.SenderPayload{
		Bytes:           encodedPNG(t, 10, 10),
		PreferredWidth:  10,
		PreferredHeight: 40,
		UserID:          "7",
	}, gfx.PNG)
	assert.True(t, hasTextCode(err, i18n.KeyImageDimensions))

	_, err = service.SaveUserImage(ctx, gfx.SenderPayload{
		Bytes:           []byte("not an image"),
		PreferredWidth:  40,
		PreferredHeight: 40,
		UserID:          "7",
	}, gfx.PNG)
	assert.True(t, hasTextCode(err, gfx.TextCodeImageNotReadable))

	_, err = service.SaveUserImage(ctx, gfx.SenderPayload{
		Bytes:           encodedPNG(t, 10, 10),
		PreferredWidth:  40,
		PreferredHeight: 40,
		UserID:          "7",
	}, gfx.WEBP)
	assert.True(t, hasTextCode(err, gfx.TextCodeUnsupportedImageExtension))

	assert.Empty(t, store.keys())
}

func TestDeleteUserImage(t *testing.T) {
	service, store := newService(t, "images")
	ctx := context.Background()

	p := payload()
	p.UserHashCode = testHashCode
	_, err := service.GenerateAndSave(ctx, p, gfx.PNG)
	require.NoError(t, err)
	p.ImageUniquePrefix = "banner"
	_, err = service.GenerateAndSave(ctx, p, gfx.PNG)
	require.NoError(t, err)

	err = service.DeleteUserImage(ctx, gfx.DeletePayload{
		UserID:            "42",
		ImageUniquePrefix: "avatar",
		UserHashCode:      testHashCode,
	})
	require.NoError(t, err)

	keys := store.keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "images/user42_"+testHashCode+"/banner_"))

	require.NoError(t, service.DeleteUserImages(ctx, "42", testHashCode))
	assert.Empty(t, store.keys())
}

func TestDeleteUserImageErrors(t *testing.T) {
	service, store := newService(t, "")
	ctx := context.Background()

	err := service.DeleteUserImage(ctx, gfx.DeletePayload{UserID: "42", ImageUniquePrefix: "avatar"})
	assert.Error(t, err)

	err = service.DeleteUserImage(ctx, gfx.DeletePayload{UserID: "42", ImageUniquePrefix: "avatar", UserHashCode: "bad"})
	assert.True(t, hasTextCode(err, i18n.KeyHashCodeFormat))

	store.fail = assert.AnError
	err = service.DeleteUserImage(ctx, gfx.DeletePayload{UserID: "42", ImageUniquePrefix: "avatar", UserHashCode: testHashCode})
	assert.True(t, hasTextCode(err, i18n.KeyExternalFileServer))

	err = service.DeleteUserImages(ctx, "42", testHashCode)
	assert.True(t, hasTextCode(err, i18n.KeyExternalFileServer))
}
