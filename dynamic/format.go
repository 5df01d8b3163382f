package dynamic

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"gopkg.in/yaml.v3"
)

// Format decodes the content of one dynamic asset file.
type Format interface {
	Decode(name string, data []byte, reg *Registry) ([]Entry, error)
}

// Ending binds a file name suffix to a format.
type Ending struct {
	Suffix string
	Format Format
}

// DefaultEndings recognises "*.assets.yaml" and "*.assets.hcl".
func DefaultEndings() []Ending {
	return []Ending{
		{Suffix: "assets.yaml", Format: YAML{}},
		{Suffix: "assets.hcl", Format: HCL{}},
	}
}

// FormatFor picks the first ending matching the file name.
func FormatFor(name string, endings []Ending) (Format, bool) {
	lower := strings.ToLower(name)
	for _, e := range endings {
		if strings.HasSuffix(lower, "."+strings.ToLower(e.Suffix)) {
			return e.Format, true
		}
	}
	return nil, false
}

// YAML reads a mapping of key to a single-variant mapping:
//
//	player:
//	  file:
//	    path: images/player.png
type YAML struct{}

func (YAML) Decode(name string, data []byte, reg *Registry) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedConfig, name, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping of keys", ErrMalformedConfig, name)
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	seen := make(map[string]bool, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		body := root.Content[i+1]
		if seen[key] {
			return nil, fmt.Errorf("%w: %s:%d: key %q defined twice", ErrMalformedConfig, name, root.Content[i].Line, key)
		}
		seen[key] = true
		if body.Kind != yaml.MappingNode || len(body.Content) != 2 {
			return nil, fmt.Errorf("%w: %s:%d: key %q must hold exactly one variant", ErrMalformedConfig, name, body.Line, key)
		}
		variant := body.Content[0].Value
		cfg, ok := reg.New(variant)
		if !ok {
			return nil, fmt.Errorf("%w: %s:%d: key %q: unknown variant %q", ErrMalformedConfig, name, body.Line, key, variant)
		}
		if err := decodeYAMLStrict(body.Content[1], cfg); err != nil {
			return nil, fmt.Errorf("%w: %s:%d: key %q: %w", ErrMalformedConfig, name, body.Line, key, err)
		}
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: key %q: %w", name, key, err)
		}
		entries = append(entries, Entry{Key: key, Variant: variant, Config: cfg})
	}
	return entries, nil
}

// decodeYAMLStrict re-encodes a node so it can go through a decoder that
// rejects unknown fields; Node.Decode has no such switch.
func decodeYAMLStrict(node *yaml.Node, out any) error {
	b, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// HCL reads labelled asset blocks:
//
//	asset "player" "file" {
//	  path = "images/player.png"
//	}
type HCL struct{}

var hclFileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "asset", LabelNames: []string{"key", "variant"}},
	},
}

func (HCL) Decode(name string, data []byte, reg *Registry) ([]Entry, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, diags)
	}
	content, diags := file.Body.Content(hclFileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, diags)
	}

	entries := make([]Entry, 0, len(content.Blocks))
	seen := make(map[string]bool, len(content.Blocks))
	for _, block := range content.Blocks {
		key, variant := block.Labels[0], block.Labels[1]
		if seen[key] {
			return nil, fmt.Errorf("%w: %s: key %q defined twice", ErrMalformedConfig, block.DefRange, key)
		}
		seen[key] = true

		cfg, ok := reg.New(variant)
		if !ok {
			return nil, fmt.Errorf("%w: %s: key %q: unknown variant %q", ErrMalformedConfig, block.DefRange, key, variant)
		}
		if diags := gohcl.DecodeBody(block.Body, nil, cfg); diags.HasErrors() {
			return nil, fmt.Errorf("%w: key %q: %w", ErrMalformedConfig, key, diags)
		}
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: key %q: %w", name, key, err)
		}
		entries = append(entries, Entry{Key: key, Variant: variant, Config: cfg})
	}
	return entries, nil
}
