package dynamic

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/milk9111/assetloader/asset"
)

// File is a single asset file.
type File struct {
	Path string `yaml:"path" hcl:"path"`
}

func (f *File) Shape() Shape { return ShapeSingle }

func (f *File) Load(store asset.Store) []asset.Handle {
	return []asset.Handle{store.Load(f.Path)}
}

func (f *File) Build(_ asset.Store, handles []asset.Handle) (Resolved, error) {
	return Resolved{Handle: handles[0]}, nil
}

func (f *File) Validate() error {
	if f.Path == "" {
		return errors.New("file: path is required")
	}
	return nil
}

// Files is an explicit list of asset files.
type Files struct {
	Paths []string `yaml:"paths" hcl:"paths"`
}

func (f *Files) Shape() Shape { return ShapeMultiple }

func (f *Files) Load(store asset.Store) []asset.Handle {
	handles := make([]asset.Handle, 0, len(f.Paths))
	for _, p := range f.Paths {
		handles = append(handles, store.Load(p))
	}
	return handles
}

func (f *Files) Build(_ asset.Store, handles []asset.Handle) (Resolved, error) {
	return Resolved{Handles: append([]asset.Handle(nil), handles...)}, nil
}

func (f *Files) Validate() error {
	for i, p := range f.Paths {
		if p == "" {
			return fmt.Errorf("files: path %d is empty", i)
		}
	}
	return nil
}

// Folder is every file under a directory, subdirectories included.
type Folder struct {
	Path string `yaml:"path" hcl:"path"`
}

func (f *Folder) Shape() Shape { return ShapeMultiple }

func (f *Folder) Load(store asset.Store) []asset.Handle {
	return []asset.Handle{store.LoadFolder(f.Path)}
}

func (f *Folder) Build(store asset.Store, handles []asset.Handle) (Resolved, error) {
	members, ok := store.Folder(handles[0])
	if !ok {
		return Resolved{}, fmt.Errorf("folder %q is not loaded", f.Path)
	}
	return Resolved{Handles: members}, nil
}

func (f *Folder) Validate() error {
	if f.Path == "" {
		return errors.New("folder: path is required")
	}
	return nil
}

// Atlas is a sprite sheet cut into equally sized frames.
type Atlas struct {
	Texture asset.Handle
	Frames  []image.Rectangle
}

// TextureAtlas builds an Atlas over an image using a regular grid.
type TextureAtlas struct {
	Path      string   `yaml:"path" hcl:"path"`
	TileSizeX float64  `yaml:"tile_size_x" hcl:"tile_size_x"`
	TileSizeY float64  `yaml:"tile_size_y" hcl:"tile_size_y"`
	Columns   int      `yaml:"columns" hcl:"columns"`
	Rows      int      `yaml:"rows" hcl:"rows"`
	PaddingX  *float64 `yaml:"padding_x" hcl:"padding_x,optional"`
	PaddingY  *float64 `yaml:"padding_y" hcl:"padding_y,optional"`
	OffsetX   *float64 `yaml:"offset_x" hcl:"offset_x,optional"`
	OffsetY   *float64 `yaml:"offset_y" hcl:"offset_y,optional"`
}

func (a *TextureAtlas) Shape() Shape { return ShapeSingle }

func (a *TextureAtlas) Load(store asset.Store) []asset.Handle {
	return []asset.Handle{store.Load(a.Path)}
}

func (a *TextureAtlas) Build(store asset.Store, handles []asset.Handle) (Resolved, error) {
	atlas := &Atlas{Texture: handles[0], Frames: a.Layout()}
	return Resolved{Handle: store.Add(asset.KindAtlas, atlas)}, nil
}

// Layout returns frame rectangles row by row.
func (a *TextureAtlas) Layout() []image.Rectangle {
	padX, padY := deref(a.PaddingX), deref(a.PaddingY)
	offX, offY := deref(a.OffsetX), deref(a.OffsetY)
	frames := make([]image.Rectangle, 0, a.Columns*a.Rows)
	for row := 0; row < a.Rows; row++ {
		for col := 0; col < a.Columns; col++ {
			x := offX + float64(col)*(a.TileSizeX+padX)
			y := offY + float64(row)*(a.TileSizeY+padY)
			frames = append(frames, image.Rect(int(x), int(y), int(x+a.TileSizeX), int(y+a.TileSizeY)))
		}
	}
	return frames
}

func (a *TextureAtlas) Validate() error {
	switch {
	case a.Path == "":
		return errors.New("texture_atlas: path is required")
	case a.TileSizeX <= 0 || a.TileSizeY <= 0:
		return errors.New("texture_atlas: tile sizes must be positive")
	case a.Columns <= 0 || a.Rows <= 0:
		return errors.New("texture_atlas: columns and rows must be positive")
	}
	return nil
}

// Material pairs a texture with a tint.
type Material struct {
	Texture asset.Handle
	Color   color.NRGBA
}

// StandardMaterial builds a Material from an image and an optional color,
// either a CSS color name or #rrggbb[aa]. The default tint is white.
type StandardMaterial struct {
	Path  string `yaml:"path" hcl:"path"`
	Color string `yaml:"color" hcl:"color,optional"`
}

func (m *StandardMaterial) Shape() Shape { return ShapeSingle }

func (m *StandardMaterial) Load(store asset.Store) []asset.Handle {
	return []asset.Handle{store.Load(m.Path)}
}

func (m *StandardMaterial) Build(store asset.Store, handles []asset.Handle) (Resolved, error) {
	c, err := ParseColor(m.Color)
	if err != nil {
		return Resolved{}, err
	}
	mat := &Material{Texture: handles[0], Color: c}
	return Resolved{Handle: store.Add(asset.KindMaterial, mat)}, nil
}

func (m *StandardMaterial) Validate() error {
	if m.Path == "" {
		return errors.New("standard_material: path is required")
	}
	if _, err := ParseColor(m.Color); err != nil {
		return fmt.Errorf("standard_material: %w", err)
	}
	return nil
}

// ParseColor accepts "", a color name, or #rrggbb / #rrggbbaa.
func ParseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nil
	}
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(hex[start:start+2], 16, 8)
		return uint8(v), err
	}
	var out [4]uint8
	out[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		out[i] = v
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
