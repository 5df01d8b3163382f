package dynamic

import "sort"

// Registry maps variant names used in dynamic asset files to configs.
type Registry struct {
	factories map[string]func() AssetConfig
}

// NewRegistry returns a registry with the standard variants: file, files,
// folder, texture_atlas and standard_material.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]func() AssetConfig)}
	r.Register("file", func() AssetConfig { return &File{} })
	r.Register("files", func() AssetConfig { return &Files{} })
	r.Register("folder", func() AssetConfig { return &Folder{} })
	r.Register("texture_atlas", func() AssetConfig { return &TextureAtlas{} })
	r.Register("standard_material", func() AssetConfig { return &StandardMaterial{} })
	return r
}

// Register adds or replaces a variant. The factory must return a pointer so
// decoders can fill it.
func (r *Registry) Register(name string, factory func() AssetConfig) {
	r.factories[name] = factory
}

func (r *Registry) New(name string) (AssetConfig, bool) {
	f, ok := r.factories[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

func (r *Registry) Variants() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
