// Package gfx generates default user avatars and stores user images on the
// external file server.
package gfx

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math/rand/v2"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

const (
	MinImageSize = 20
	MaxImageSize = 5000
	MinFontSize  = 1
	MaxFontSize  = 500

	jpegQuality = 90
	fontDPI     = 72
)

// ImageExtension is an output image format.
type ImageExtension string

const (
	PNG  ImageExtension = "png"
	JPEG ImageExtension = "jpeg"
	GIF  ImageExtension = "gif"
	WEBP ImageExtension = "webp"
)

func (e ImageExtension) String() string {
	return string(e)
}

// Encode writes img in the format of ext. WEBP can only be decoded.
func Encode(img image.Image, ext ImageExtension) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch ext {
	case PNG:
		err = png.Encode(&buf, img)
	case JPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case GIF:
		err = gif.Encode(&buf, img, nil)
	default:
		return nil, ErrUnsupportedImageExtension.Clone().
			WithMetadata(map[string]any{"extension": ext.String()})
	}

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to encode image").
			WithMetadata(map[string]any{"extension": ext.String()})
	}
	return buf.Bytes(), nil
}

// GeneratorPayload describes a default avatar. A nil PreferredColor picks a
// random palette colour.
type GeneratorPayload struct {
	Size              int
	FontSize          int
	Initials          string
	UserID            string
	ImageUniquePrefix string
	UserHashCode      string
	PreferredColor    color.Color
}

// GeneratedImage is an encoded avatar and its background colour.
type GeneratedImage struct {
	Bytes      []byte
	Background color.Color
}

// GeneratorOption configures a UserImageGenerator.
type GeneratorOption func(*UserImageGenerator)

// WithGeneratorLogger sets the generator logger.
func WithGeneratorLogger(logger Logger) GeneratorOption {
	return func(g *UserImageGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRandom replaces the palette picker, mostly for tests.
func WithRandom(intN func(n int) int) GeneratorOption {
	return func(g *UserImageGenerator) {
		if intN != nil {
			g.intN = intN
		}
	}
}

// UserImageGenerator draws initials centred on a square background.
type UserImageGenerator struct {
	font       *opentype.Font
	palette    []color.Color
	foreground color.Color
	intN       func(n int) int
	logger     Logger
}

// NewUserImageGenerator loads the font and colours from cfg. A font link
// that cannot be read falls back to Go Regular. Invalid palette entries are
// skipped.
func NewUserImageGenerator(cfg config.Gfx, opts ...GeneratorOption) (*UserImageGenerator, error) {
	g := &UserImageGenerator{
		intN:   rand.IntN,
		logger: defLogger{},
	}
	for _, opt := range opts {
		opt(g)
	}

	fg, err := ParseHexColor(cfg.PreferredForegroundColor)
	if err != nil {
		return nil, err
	}
	g.foreground = fg

	g.font, err = g.loadFont(cfg.PreferredFontLink)
	if err != nil {
		return nil, err
	}

	g.palette = g.loadPalette(cfg.PreferredHexColors)
	g.logger.Info("user image generator colors: %s", ToHexStringArray(g.palette))
	return g, nil
}

func (g *UserImageGenerator) loadFont(link string) (*opentype.Font, error) {
	if strings.TrimSpace(link) != "" {
		data, err := os.ReadFile(link)
		if err == nil {
			f, perr := opentype.Parse(data)
			if perr == nil {
				g.logger.Info("loaded custom font %s", link)
				return f, nil
			}
			err = perr
		}
		g.logger.Error("unable to load custom font %s, using default: %v", link, err)
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to parse default font")
	}
	return f, nil
}

func (g *UserImageGenerator) loadPalette(hexColors []string) []color.Color {
	palette := make([]color.Color, 0, len(hexColors))
	for _, hex := range hexColors {
		c, err := ParseHexColor(hex)
		if err != nil {
			g.logger.Error("hex color %q is invalid and was not loaded", hex)
			continue
		}
		palette = append(palette, c)
	}
	if len(palette) > 0 {
		return palette
	}

	for _, hex := range DefaultColors {
		c, _ := ParseHexColor(hex)
		palette = append(palette, c)
	}
	return palette
}

// Palette returns the background colours a random pick is made from.
func (g *UserImageGenerator) Palette() []color.Color {
	out := make([]color.Color, len(g.palette))
	copy(out, g.palette)
	return out
}

// Generate draws the avatar described by payload and encodes it as ext.
func (g *UserImageGenerator) Generate(payload GeneratorPayload, ext ImageExtension) (*GeneratedImage, error) {
	if payload.Size < MinImageSize || payload.Size > MaxImageSize {
		return nil, ErrImageNotSupportedDimensions.Clone().
			WithMetadata(map[string]any{"min": MinImageSize, "max": MaxImageSize, "size": payload.Size})
	}
	if payload.FontSize < MinFontSize || payload.FontSize > MaxFontSize {
		return nil, ErrFontSizeNotSupported.Clone().
			WithMetadata(map[string]any{"min": MinFontSize, "max": MaxFontSize, "font_size": payload.FontSize})
	}
	if utf8.RuneCountInString(payload.Initials) != 2 {
		return nil, ErrTooMuchInitialsCharacters.Clone().
			WithMetadata(map[string]any{"initials": payload.Initials})
	}

	background := payload.PreferredColor
	if background == nil {
		background = g.palette[g.intN(len(g.palette))]
	}

	img := image.NewRGBA(image.Rect(0, 0, payload.Size, payload.Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	face, err := opentype.NewFace(g.font, &opentype.FaceOptions{
		Size:    float64(payload.FontSize),
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to create font face")
	}
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(g.foreground),
		Face: face,
	}
	metrics := face.Metrics()
	size := fixed.I(payload.Size)
	drawer.Dot = fixed.Point26_6{
		X: (size - drawer.MeasureString(payload.Initials)) / 2,
		Y: (size-metrics.Height)/2 + metrics.Ascent,
	}
	drawer.DrawString(payload.Initials)

	data, err := Encode(img, ext)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("generated %dpx image for user %s with background %s",
		payload.Size, payload.UserID, ConvertRGBToHex(background))
	return &GeneratedImage{Bytes: data, Background: background}, nil
}
