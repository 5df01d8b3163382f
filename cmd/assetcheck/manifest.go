package main

import (
	"fmt"
	"sort"

	"github.com/milk9111/assetloader/collection"
	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

// manifest holds one resolved value per dynamic key.
type manifest struct {
	values map[string]collection.Value
}

var manifestResource = ecs.NewResource[manifest]()

// manifestSchema declares a field for every key of table, shaped like the
// config the key holds.
func manifestSchema(table *dynamic.Table) (*collection.Schema[manifest], error) {
	keys := table.Keys()
	b := collection.New(manifestResource)
	for _, key := range keys {
		cfg, _ := table.Get(key)
		spec := collection.FieldSpec{Name: key, Key: key, Shape: cfg.Shape()}
		if spec.Shape == dynamic.ShapeMultiple {
			spec.Mapped = collection.MapByPath
		}
		b.Field(spec)
	}
	return b.Build(func(f collection.Fields) (manifest, error) {
		m := manifest{values: make(map[string]collection.Value, len(keys))}
		for _, key := range keys {
			v, ok := f.Get(key)
			if !ok {
				return manifest{}, fmt.Errorf("key %q not resolved", key)
			}
			m.values[key] = v
		}
		return m, nil
	})
}

func (m manifest) lines() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		v := m.values[k]
		switch {
		case v.Mapped != nil:
			members := make([]string, 0, len(v.Mapped))
			for name := range v.Mapped {
				members = append(members, name)
			}
			sort.Strings(members)
			out = append(out, fmt.Sprintf("%s\t%d files\t%v", k, len(members), members))
		default:
			out = append(out, fmt.Sprintf("%s\t%s", k, v.Handle))
		}
	}
	return out
}
