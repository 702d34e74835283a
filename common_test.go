package tmx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		raw  string
		want Color
	}{
		{"#ff83947b", Color{A: 0xff, R: 0x83, G: 0x94, B: 0x7b}},
		{"ff83947b", Color{A: 0xff, R: 0x83, G: 0x94, B: 0x7b}},
		{"#2a3b4c", Color{A: 0xff, R: 0x2a, G: 0x3b, B: 0x4c}},
		{"2a3b4c", Color{A: 0xff, R: 0x2a, G: 0x3b, B: 0x4c}},
		{"#00000000", Color{}},
	}
	for _, c := range cases {
		got, err := parseColor(c.raw)
		require.Nil(t, err, c.raw)
		assert.Equal(t, c.want, got, c.raw)
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, raw := range []string{"", "#", "#fff", "#gggggg", "#12345", "#123456789"} {
		_, err := parseColor(raw)
		assert.NotNil(t, err, raw)
	}
}

func TestColorString(t *testing.T) {
	c := Color{A: 0x80, R: 0xff, G: 0x00, B: 0x7b}
	assert.Equal(t, "#80ff007b", c.String())
}

func TestParseEnums(t *testing.T) {
	o, err := parseOrientation("hexagonal")
	require.Nil(t, err)
	assert.Equal(t, Hexagonal, o)
	_, err = parseOrientation("round")
	assert.ErrorIs(t, err, ErrInvalidAttribute)

	r, err := parseRenderOrder("left-up")
	require.Nil(t, err)
	assert.Equal(t, LeftUp, r)
	_, err = parseRenderOrder("inside-out")
	assert.ErrorIs(t, err, ErrInvalidAttribute)

	d, err := parseDrawOrder("topdown")
	require.Nil(t, err)
	assert.Equal(t, DrawTopDown, d)
	_, err = parseDrawOrder("random")
	assert.ErrorIs(t, err, ErrInvalidAttribute)
}

func TestParseBoolAttr(t *testing.T) {
	v, err := parseBoolAttr("layer", "visible", "1")
	require.Nil(t, err)
	assert.True(t, v)

	v, err = parseBoolAttr("layer", "visible", "0")
	require.Nil(t, err)
	assert.False(t, v)

	// anything but "0" and "1" is rejected
	for _, raw := range []string{"true", "false", "yes", "2", ""} {
		_, err = parseBoolAttr("layer", "visible", raw)
		assert.ErrorIs(t, err, ErrInvalidAttribute, raw)
	}
}
