package collection

import (
	"fmt"

	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

// Collection is a schema with its target type erased, as registered with a
// loading state.
type Collection interface {
	Name() string
	ResourceID() ecs.ResourceID
	Fields() []FieldSpec
	NewRun() *Run
}

// Schema declares how to build a T and where it is installed.
type Schema[T any] struct {
	handle   ecs.ResourceHandle[T]
	fields   []FieldSpec
	assemble func(Fields) (T, error)
}

func (s *Schema[T]) Name() string {
	return s.handle.Name()
}

func (s *Schema[T]) ResourceID() ecs.ResourceID {
	return s.handle.ID()
}

// Fields returns the field specs in declaration order.
func (s *Schema[T]) Fields() []FieldSpec {
	return append([]FieldSpec(nil), s.fields...)
}

// NewRun starts a fresh resolution of the schema.
func (s *Schema[T]) NewRun() *Run {
	return &Run{
		name:   s.Name(),
		fields: s.fields,
		slots:  make([]slot, len(s.fields)),
		assemble: func(f Fields) (any, error) {
			return s.assemble(f)
		},
		install: func(w *ecs.World, v any) error {
			return ecs.Insert(w, s.handle, v.(T))
		},
		remove: func(w *ecs.World) bool {
			return ecs.Remove(w, s.handle)
		},
	}
}

// Builder collects field declarations for a Schema. The first invalid
// declaration is reported by Build.
type Builder[T any] struct {
	handle ecs.ResourceHandle[T]
	fields []FieldSpec
}

func New[T any](handle ecs.ResourceHandle[T]) *Builder[T] {
	return &Builder[T]{handle: handle}
}

// File declares a single file at a literal path.
func (b *Builder[T]) File(name, path string, opts ...Option) *Builder[T] {
	return b.add(FieldSpec{Name: name, Source: &dynamic.File{Path: path}, Shape: dynamic.ShapeSingle}, opts)
}

// Key declares a single asset behind a dynamic key.
func (b *Builder[T]) Key(name, key string, opts ...Option) *Builder[T] {
	return b.add(FieldSpec{Name: name, Key: key, Shape: dynamic.ShapeSingle}, opts)
}

// Folder declares every file under a literal directory.
func (b *Builder[T]) Folder(name, path string, opts ...Option) *Builder[T] {
	return b.add(FieldSpec{Name: name, Source: &dynamic.Folder{Path: path}, Shape: dynamic.ShapeMultiple}, opts)
}

// Files declares an explicit list of files.
func (b *Builder[T]) Files(name string, paths []string, opts ...Option) *Builder[T] {
	cfg := &dynamic.Files{Paths: append([]string(nil), paths...)}
	return b.add(FieldSpec{Name: name, Source: cfg, Shape: dynamic.ShapeMultiple}, opts)
}

// ListKey declares a list of assets, a folder or a file list, behind a
// dynamic key.
func (b *Builder[T]) ListKey(name, key string, opts ...Option) *Builder[T] {
	return b.add(FieldSpec{Name: name, Key: key, Shape: dynamic.ShapeMultiple}, opts)
}

// Config declares a field from a literal config, such as a texture atlas.
func (b *Builder[T]) Config(name string, cfg dynamic.AssetConfig, opts ...Option) *Builder[T] {
	spec := FieldSpec{Name: name, Source: cfg}
	if cfg != nil {
		spec.Shape = cfg.Shape()
	}
	return b.add(spec, opts)
}

// Derived declares a field built from installed resources once every asset
// of the collection is loaded.
func (b *Builder[T]) Derived(name string, fn func(ecs.View) (any, error)) *Builder[T] {
	return b.add(FieldSpec{Name: name, Derive: fn}, nil)
}

// Field appends a raw spec.
func (b *Builder[T]) Field(spec FieldSpec) *Builder[T] {
	return b.add(spec, nil)
}

func (b *Builder[T]) add(spec FieldSpec, opts []Option) *Builder[T] {
	for _, opt := range opts {
		opt(&spec)
	}
	b.fields = append(b.fields, spec)
	return b
}

// Build validates the declarations. assemble turns resolved fields into the
// collection value and runs once per successful resolution.
func (b *Builder[T]) Build(assemble func(Fields) (T, error)) (*Schema[T], error) {
	if !b.handle.Valid() {
		return nil, fmt.Errorf("%w: collection has no resource handle", ErrInvalidField)
	}
	if assemble == nil {
		return nil, fmt.Errorf("%w: collection %s has no assemble function", ErrInvalidField, b.handle.Name())
	}
	seen := make(map[string]bool, len(b.fields))
	for _, f := range b.fields {
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("collection %s: %w", b.handle.Name(), err)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: collection %s: field %s declared twice", ErrInvalidField, b.handle.Name(), f.Name)
		}
		seen[f.Name] = true
	}
	return &Schema[T]{
		handle:   b.handle,
		fields:   append([]FieldSpec(nil), b.fields...),
		assemble: assemble,
	}, nil
}
