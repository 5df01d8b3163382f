// Package collection describes asset collections as data and resolves them
// into built values once every underlying load is done.
package collection

import (
	"errors"
	"fmt"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

var (
	ErrInvalidField    = errors.New("collection: invalid field")
	ErrMissingKey      = errors.New("collection: missing dynamic key")
	ErrTypeMismatch    = errors.New("collection: asset kind mismatch")
	ErrMappedCollision = errors.New("collection: mapped key collision")
)

// FieldError locates a failure inside a collection.
type FieldError struct {
	Collection string
	Field      string
	Key        string
	Path       string
	Err        error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("collection %s: field %s", e.Collection, e.Field)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path %s)", e.Path)
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// MapKey selects the key each member gets in a mapped field.
type MapKey int

const (
	// MapByPath keys members by their slash-separated asset path.
	MapByPath MapKey = iota + 1
	MapByFileName
	MapByFileStem
)

func (m MapKey) key(p string) string {
	switch m {
	case MapByFileName:
		return asset.FileName(p)
	case MapByFileStem:
		return asset.FileStem(p)
	default:
		return asset.CleanPath(p)
	}
}

// FieldSpec is one declared field. Exactly one of Source, Key and Derive is
// set.
type FieldSpec struct {
	Name string
	// Source is a literal config such as a file or folder path.
	Source dynamic.AssetConfig
	// Key is looked up in the dynamic asset table of the current run.
	Key      string
	Optional bool
	// Shape is what the field holds: one handle or a list.
	Shape dynamic.Shape
	// Kind, when set, must match every loaded member.
	Kind asset.Kind
	// Mapped, when set, builds a map of members for list fields.
	Mapped MapKey
	// Derive builds the field from already installed resources instead of
	// from an asset.
	Derive func(ecs.View) (any, error)
}

func (f FieldSpec) validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: field has no name", ErrInvalidField)
	}
	sources := 0
	if f.Source != nil {
		sources++
	}
	if f.Key != "" {
		sources++
	}
	if f.Derive != nil {
		sources++
	}
	switch {
	case sources == 0:
		return fmt.Errorf("%w: field %s has no source", ErrInvalidField, f.Name)
	case sources > 1:
		return fmt.Errorf("%w: field %s declares more than one of path, key and derive", ErrInvalidField, f.Name)
	case f.Optional && f.Key == "":
		return fmt.Errorf("%w: field %s: only key fields can be optional", ErrInvalidField, f.Name)
	case f.Mapped != 0 && f.Shape != dynamic.ShapeMultiple:
		return fmt.Errorf("%w: field %s: only list fields can be mapped", ErrInvalidField, f.Name)
	case f.Source != nil && f.Source.Shape() != f.Shape:
		return fmt.Errorf("%w: field %s: source is %s, field is %s", ErrInvalidField, f.Name, f.Source.Shape(), f.Shape)
	}
	return nil
}

// Option adjusts a field declared through a Builder.
type Option func(*FieldSpec)

// Optional lets a key field resolve to an empty value when the key is absent.
func Optional() Option {
	return func(f *FieldSpec) { f.Optional = true }
}

// Typed requires every member of the field to load as kind.
func Typed(kind asset.Kind) Option {
	return func(f *FieldSpec) { f.Kind = kind }
}

// Mapped keys the members of a list field.
func Mapped(by MapKey) Option {
	return func(f *FieldSpec) { f.Mapped = by }
}
