// Package dynamic resolves run-time asset keys: the configs a key can stand
// for, the per-run table of keys, and the files that fill it.
package dynamic

import (
	"errors"
	"fmt"

	"github.com/milk9111/assetloader/asset"
)

// ErrMalformedConfig marks unreadable dynamic asset files, unknown fields or
// variants, invalid values, and keys used with the wrong shape.
var ErrMalformedConfig = errors.New("dynamic: malformed asset config")

// Shape tells whether a config resolves to one handle or to a list.
type Shape int

const (
	ShapeSingle Shape = iota
	ShapeMultiple
)

func (s Shape) String() string {
	if s == ShapeMultiple {
		return "multiple"
	}
	return "single"
}

// AssetConfig describes how a key maps to underlying loads.
type AssetConfig interface {
	Shape() Shape
	// Load requests everything the config needs from the store.
	Load(store asset.Store) []asset.Handle
	// Build runs once every handle from Load (and folder members) is loaded.
	Build(store asset.Store, handles []asset.Handle) (Resolved, error)
}

// Resolved is the product of a config: Handle for ShapeSingle, Handles for
// ShapeMultiple.
type Resolved struct {
	Handle  asset.Handle
	Handles []asset.Handle
}

// Validator is implemented by configs that can check their own values after
// decoding.
type Validator interface {
	Validate() error
}

func validate(cfg AssetConfig) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}
	return nil
}

// Entry is one key of a decoded dynamic asset file, in file order.
type Entry struct {
	Key     string
	Variant string
	Config  AssetConfig
}
