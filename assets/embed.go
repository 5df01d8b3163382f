// Package assets embeds the demo content: images, dynamic asset files and
// scripts.
package assets

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed images dynamic scripts
var content embed.FS

// Open returns the directory root on disk, or the embedded content when root
// is empty.
func Open(root string) fs.FS {
	if root == "" {
		return content
	}
	return os.DirFS(root)
}
