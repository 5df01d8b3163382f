package render

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/dynamic"
)

// Image converts a loaded image asset to an *ebiten.Image once and caches it.
func Image(store asset.Store, h asset.Handle) (*ebiten.Image, error) {
	if img := GetImage(store, h.ID()); img != nil {
		return img, nil
	}
	src, ok := asset.Typed[image.Image](store, h)
	if !ok {
		return nil, fmt.Errorf("render: %s is not a loaded image", h)
	}
	img := ebiten.NewImageFromImage(src)
	RegisterImage(store, h.ID(), img)
	return img, nil
}

// AtlasFrame returns frame i of a texture atlas asset.
func AtlasFrame(store asset.Store, h asset.Handle, i int) (*ebiten.Image, error) {
	atlas, ok := asset.Typed[*dynamic.Atlas](store, h)
	if !ok {
		return nil, fmt.Errorf("render: %s is not an atlas", h)
	}
	if i < 0 || i >= len(atlas.Frames) {
		return nil, fmt.Errorf("render: atlas %s has no frame %d", h, i)
	}
	sheet, err := Image(store, atlas.Texture)
	if err != nil {
		return nil, err
	}
	return sheet.SubImage(atlas.Frames[i]).(*ebiten.Image), nil
}

// Material returns the texture of a material asset and its tint.
func Material(store asset.Store, h asset.Handle) (*ebiten.Image, ebiten.ColorScale, error) {
	var scale ebiten.ColorScale
	mat, ok := asset.Typed[*dynamic.Material](store, h)
	if !ok {
		return nil, scale, fmt.Errorf("render: %s is not a material", h)
	}
	img, err := Image(store, mat.Texture)
	if err != nil {
		return nil, scale, err
	}
	scale.ScaleWithColor(mat.Color)
	return img, scale, nil
}
