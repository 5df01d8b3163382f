package collection

import (
	"errors"
	"testing"

	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

type levelAssets struct {
	Tree any
}

var levelAssetsResource = ecs.NewResource[levelAssets]()

func assembleNothing(Fields) (levelAssets, error) { return levelAssets{}, nil }

func TestBuilderRejectsInvalidFields(t *testing.T) {
	cases := []struct {
		name     string
		declare  func(b *Builder[levelAssets]) *Builder[levelAssets]
		assemble func(Fields) (levelAssets, error)
	}{
		{
			name: "no_source",
			declare: func(b *Builder[levelAssets]) *Builder[levelAssets] {
				return b.Field(FieldSpec{Name: "tree"})
			},
			assemble: assembleNothing,
		},
		{
			name: "path_and_key",
			declare: func(b *Builder[levelAssets]) *Builder[levelAssets] {
				return b.Field(FieldSpec{Name: "tree", Source: &dynamic.File{Path: "tree.png"}, Key: "tree"})
			},
			assemble: assembleNothing,
		},
		{
			name: "optional_literal",
			declare: func(b *Builder[levelAssets]) *Builder[levelAssets] {
				return b.File("tree", "tree.png", Optional())
			},
			assemble: assembleNothing,
		},
		{
			name: "mapped_single",
			declare: func(b *Builder[levelAssets]) *Builder[levelAssets] {
				return b.Key("tree", "tree", Mapped(MapByPath))
			},
			assemble: assembleNothing,
		},
		{
			name: "source_shape",
			declare: func(b *Builder[levelAssets]) *Builder[levelAssets] {
				return b.Field(FieldSpec{Name: "tree", Source: &dynamic.Folder{Path: "trees"}, Shape: dynamic.ShapeSingle})
			},
			assemble: assembleNothing,
		},
		{
			name: "duplicate_name",
			declare: func(b *Builder[levelAssets]) *Builder[levelAssets] {
				return b.File("tree", "a.png").File("tree", "b.png")
			},
			assemble: assembleNothing,
		},
		{
			name: "no_name",
			declare: func(b *Builder[levelAssets]) *Builder[levelAssets] {
				return b.File("", "a.png")
			},
			assemble: assembleNothing,
		},
		{
			name: "no_assemble",
			declare: func(b *Builder[levelAssets]) *Builder[levelAssets] {
				return b.File("tree", "a.png")
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.declare(New(levelAssetsResource)).Build(c.assemble)
			if !errors.Is(err, ErrInvalidField) {
				t.Fatalf("expected ErrInvalidField, got %v", err)
			}
		})
	}
}

func TestBuilderKeepsDeclarationOrder(t *testing.T) {
	schema, err := New(levelAssetsResource).
		File("tree", "tree.png").
		ListKey("music", "music", Optional()).
		Folder("tiles", "tiles", Mapped(MapByFileStem)).
		Build(assembleNothing)
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}

	fields := schema.Fields()
	want := []string{"tree", "music", "tiles"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for i, name := range want {
		if fields[i].Name != name {
			t.Fatalf("field %d: expected %s, got %s", i, name, fields[i].Name)
		}
	}
	if schema.Name() != "collection.levelAssets" {
		t.Fatalf("unexpected schema name %q", schema.Name())
	}
	if schema.ResourceID() != levelAssetsResource.ID() {
		t.Fatalf("schema should be installed under its resource handle")
	}
}
