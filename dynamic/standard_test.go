package dynamic

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/asset/assettest"
)

func TestTextureAtlasLayout(t *testing.T) {
	pad, off := 2.0, 1.0
	atlas := &TextureAtlas{
		Path:      "sheet.png",
		TileSizeX: 8,
		TileSizeY: 4,
		Columns:   2,
		Rows:      2,
		PaddingX:  &pad,
		OffsetY:   &off,
	}

	want := []image.Rectangle{
		image.Rect(0, 1, 8, 5),
		image.Rect(10, 1, 18, 5),
		image.Rect(0, 5, 8, 9),
		image.Rect(10, 5, 18, 9),
	}
	if diff := cmp.Diff(want, atlas.Layout()); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "", want: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{in: "red", want: color.NRGBA{R: 255, A: 255}},
		{in: "Red", want: color.NRGBA{R: 255, A: 255}},
		{in: "#102030", want: color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}},
		{in: "#10203040", want: color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
		{in: "#1020", wantErr: true},
		{in: "#zz2030", wantErr: true},
		{in: "notacolor", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseColor(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", c.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("ParseColor(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestBuildersAddDerivedAssets(t *testing.T) {
	store := assettest.New()
	tex := store.Complete("crate.png", image.NewNRGBA(image.Rect(0, 0, 4, 4)))

	mat := &StandardMaterial{Path: "crate.png", Color: "#ff000080"}
	res, err := mat.Build(store, []asset.Handle{tex})
	if err != nil {
		t.Fatalf("build material: %v", err)
	}
	if store.Kind(res.Handle) != asset.KindMaterial {
		t.Fatalf("expected material kind, got %q", store.Kind(res.Handle))
	}
	m, ok := asset.Typed[*Material](store, res.Handle)
	if !ok || m.Texture != tex || m.Color.A != 0x80 {
		t.Fatalf("unexpected material %#v", m)
	}

	sheet := &TextureAtlas{Path: "crate.png", TileSizeX: 2, TileSizeY: 2, Columns: 2, Rows: 2}
	res, err = sheet.Build(store, []asset.Handle{tex})
	if err != nil {
		t.Fatalf("build atlas: %v", err)
	}
	a, ok := asset.Typed[*Atlas](store, res.Handle)
	if !ok || len(a.Frames) != 4 || a.Texture != tex {
		t.Fatalf("unexpected atlas %#v", a)
	}

	folder := &Folder{Path: "tiles"}
	fh := store.CompleteFolder("tiles", "tiles/a.png", "tiles/b.png")
	res, err = folder.Build(store, []asset.Handle{fh})
	if err != nil {
		t.Fatalf("build folder: %v", err)
	}
	if len(res.Handles) != 2 {
		t.Fatalf("expected 2 folder members, got %d", len(res.Handles))
	}
}
