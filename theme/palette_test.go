package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const gpl = `GIMP Palette
Name: two
Columns: 2
# comment
  0   0   0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two" {
		t.Errorf("Name = %q", p.Name)
	}
	if len(p.Colors) != 2 || p.Colors[1] != (RGB{255, 255, 255}) {
		t.Errorf("Colors = %v", p.Colors)
	}

	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Error("empty palette accepted")
	}
}

func TestLookup(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}

	tests := []struct {
		norm float64
		want RGB
	}{
		{-1, RGB{0, 0, 0}},
		{0, RGB{0, 0, 0}},
		{0.5, RGB{100, 50, 25}},
		{1, RGB{200, 100, 50}},
		{2, RGB{200, 100, 50}},
	}
	for _, tt := range tests {
		if got := p.Lookup(tt.norm); got != tt.want {
			t.Errorf("Lookup(%v) = %v, want %v", tt.norm, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	p, err := Load("")
	if err != nil || p.Name != "plasma" {
		t.Fatalf("Load(\"\") = %v, %v", p, err)
	}

	path := filepath.Join(t.TempDir(), "two.gpl")
	if err := os.WriteFile(path, []byte(gpl), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two" {
		t.Errorf("Name = %q", p.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.gpl")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestHex(t *testing.T) {
	if got := (RGB{255, 8, 0}).Hex(); got != "#ff0800" {
		t.Errorf("Hex() = %q", got)
	}
}
