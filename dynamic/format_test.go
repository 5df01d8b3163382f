package dynamic

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestYAMLDecode(t *testing.T) {
	src := `
player:
  file:
    path: images/player.png
tiles:
  folder:
    path: images/tiles
sheet:
  texture_atlas:
    path: images/sheet.png
    tile_size_x: 16
    tile_size_y: 16
    columns: 4
    rows: 2
    padding_x: 1
`
	entries, err := YAML{}.Decode("level.assets.yaml", []byte(src), NewRegistry())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	var keys, variants []string
	for _, e := range entries {
		keys = append(keys, e.Key)
		variants = append(variants, e.Variant)
	}
	if diff := cmp.Diff([]string{"player", "tiles", "sheet"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"file", "folder", "texture_atlas"}, variants); diff != "" {
		t.Fatalf("variants mismatch (-want +got):\n%s", diff)
	}

	file, ok := entries[0].Config.(*File)
	if !ok || file.Path != "images/player.png" {
		t.Fatalf("expected file config for player, got %#v", entries[0].Config)
	}
	atlas, ok := entries[2].Config.(*TextureAtlas)
	if !ok {
		t.Fatalf("expected texture atlas config, got %T", entries[2].Config)
	}
	if atlas.PaddingX == nil || *atlas.PaddingX != 1 {
		t.Fatalf("expected padding_x 1, got %v", atlas.PaddingX)
	}
	if atlas.PaddingY != nil {
		t.Fatalf("expected padding_y unset, got %v", *atlas.PaddingY)
	}
}

func TestYAMLDecodeEmpty(t *testing.T) {
	entries, err := YAML{}.Decode("empty.assets.yaml", nil, NewRegistry())
	if err != nil {
		t.Fatalf("empty document should decode: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestYAMLDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: "player: [file"},
		{name: "top_level_list", src: "- player\n- enemy\n"},
		{name: "unknown_variant", src: "player:\n  sprite:\n    path: a.png\n"},
		{name: "two_variants", src: "player:\n  file:\n    path: a.png\n  folder:\n    path: b\n"},
		{name: "unknown_field", src: "player:\n  file:\n    path: a.png\n    scale: 2\n"},
		{name: "missing_path", src: "player:\n  file: {}\n"},
		{name: "duplicate_key", src: "player:\n  file:\n    path: a.png\nplayer:\n  file:\n    path: b.png\n"},
		{name: "bad_color", src: "mat:\n  standard_material:\n    path: a.png\n    color: \"#12\"\n"},
		{name: "zero_tiles", src: "sheet:\n  texture_atlas:\n    path: a.png\n    tile_size_x: 0\n    tile_size_y: 8\n    columns: 1\n    rows: 1\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := YAML{}.Decode("bad.assets.yaml", []byte(c.src), NewRegistry())
			if !errors.Is(err, ErrMalformedConfig) {
				t.Fatalf("expected ErrMalformedConfig, got %v", err)
			}
		})
	}
}

func TestHCLDecode(t *testing.T) {
	src := `
asset "music" "files" {
  paths = ["audio/a.ogg", "audio/b.ogg"]
}

asset "crate" "standard_material" {
  path  = "images/crate.png"
  color = "tomato"
}
`
	entries, err := HCL{}.Decode("level.assets.hcl", []byte(src), NewRegistry())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	files, ok := entries[0].Config.(*Files)
	if !ok {
		t.Fatalf("expected files config, got %T", entries[0].Config)
	}
	if diff := cmp.Diff([]string{"audio/a.ogg", "audio/b.ogg"}, files.Paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	mat, ok := entries[1].Config.(*StandardMaterial)
	if !ok || mat.Color != "tomato" {
		t.Fatalf("expected standard material tinted tomato, got %#v", entries[1].Config)
	}
}

func TestHCLDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: `asset "a" "file" {`},
		{name: "unknown_block", src: `sprite "a" { path = "a.png" }`},
		{name: "unknown_variant", src: `asset "a" "sprite" { path = "a.png" }`},
		{name: "unknown_attribute", src: `asset "a" "file" {
  path  = "a.png"
  scale = 2
}`},
		{name: "missing_attribute", src: `asset "a" "file" {}`},
		{name: "duplicate_key", src: `asset "a" "file" { path = "a.png" }
asset "a" "file" { path = "b.png" }`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := HCL{}.Decode("bad.assets.hcl", []byte(c.src), NewRegistry())
			if !errors.Is(err, ErrMalformedConfig) {
				t.Fatalf("expected ErrMalformedConfig, got %v", err)
			}
		})
	}
}

func TestFormatFor(t *testing.T) {
	endings := append(DefaultEndings(), Ending{Suffix: "level.yml", Format: YAML{}})

	cases := []struct {
		name string
		file string
		want Format
		ok   bool
	}{
		{name: "yaml", file: "dynamic/ui.assets.yaml", want: YAML{}, ok: true},
		{name: "hcl", file: "dynamic/ui.assets.hcl", want: HCL{}, ok: true},
		{name: "upper_case", file: "UI.ASSETS.YAML", want: YAML{}, ok: true},
		{name: "custom", file: "one.level.yml", want: YAML{}, ok: true},
		{name: "plain_yaml", file: "ui.yaml", ok: false},
		{name: "suffix_without_dot", file: "myassets.yaml", ok: false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := FormatFor(c.file, endings)
			if ok != c.ok {
				t.Fatalf("FormatFor(%q) ok=%v, want %v", c.file, ok, c.ok)
			}
			if ok && got != c.want {
				t.Fatalf("FormatFor(%q) = %T, want %T", c.file, got, c.want)
			}
		})
	}
}
