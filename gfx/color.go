package gfx

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultColors is the background palette used when none is configured.
var DefaultColors = []string{
	"#f83f3d", "#fe5430", "#ff9634", "#ffbf41", "#cad958", "#85c15d", "#029489",
	"#00bcd2", "#1197ec", "#4151b0", "#6a3ab0", "#a128a9", "#ee1860",
}

// ConvertRGBToHex formats c as #rrggbb, ignoring alpha.
func ConvertRGBToHex(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// ParseHexColor accepts exactly six hex digits, with or without a leading hash.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, ErrInvalidHexColor.Clone().WithMetadata(map[string]any{"color": s})
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		invalid := ErrInvalidHexColor.Clone().WithMetadata(map[string]any{"color": s})
		invalid.Source = err
		return color.RGBA{}, invalid
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// ToHexStringArray renders colors for log lines, e.g. [ #ffffff,#000000 ].
func ToHexStringArray(colors []color.Color) string {
	hex := make([]string, len(colors))
	for i, c := range colors {
		hex[i] = ConvertRGBToHex(c)
	}
	return "[ " + strings.Join(hex, ",") + " ]"
}
