package gfx

import (
	"image/color"
	"strings"
	"testing"
)

func TestQuadVertices(t *testing.T) {
	v := quadVertices()
	if len(v) != 24 {
		t.Fatal("expected 6 vertices of 4 floats, got", len(v))
	}
	for i := 0; i < len(v); i += 4 {
		x, y, u, w := v[i], v[i+1], v[i+2], v[i+3]
		if (x+1)/2 != u || (y+1)/2 != w {
			t.Fatal("texture coordinates should follow the position", x, y, u, w)
		}
	}
}

func TestPaletteImage(t *testing.T) {
	img := paletteImage([]float32{1, 0, 0, 0, 0.5, 2, -1})
	if img.Rect.Dx() != 2 || img.Rect.Dy() != 1 {
		t.Fatal("unexpected size", img.Rect)
	}
	if img.RGBAAt(0, 0) != (color.RGBA{255, 0, 0, 255}) {
		t.Fatal("unexpected first color", img.RGBAAt(0, 0))
	}
	if img.RGBAAt(1, 0) != (color.RGBA{0, 128, 255, 255}) {
		t.Fatal("colors should be clamped", img.RGBAAt(1, 0))
	}
	if empty := paletteImage(nil); empty.Rect.Dx() != 1 {
		t.Fatal("an empty palette still makes a 1x1 texture")
	}
}

func TestFragmentSources(t *testing.T) {
	for _, name := range []string{"passthrough", "sphere", "ripple", "spectrum"} {
		src, ok := fragmentSource(name)
		if !ok || !strings.Contains(src, "void main()") || !strings.HasPrefix(strings.TrimSpace(src), "#version") {
			t.Fatal("missing shader for", name)
		}
	}
	src, ok := fragmentSource("warp-tunnel")
	if ok || src != fragmentSources["passthrough"] {
		t.Fatal("unknown effects should use the passthrough shader")
	}
}

func TestUniformName(t *testing.T) {
	if uniformName("uRipples[0]") != "uRipples" || uniformName("uTime") != "uTime" {
		t.Fatal("array suffix should be stripped")
	}
}
