package asset

import (
	"path"
	"strings"
)

// CleanPath normalises an asset path to forward slashes relative to the store
// root, so the same asset gets the same key on every host platform.
func CleanPath(p string) string {
	if p == "" {
		return ""
	}
	s := strings.ReplaceAll(p, `\`, "/")
	s = path.Clean(s)
	s = strings.TrimLeft(s, "/")
	if s == "" {
		return "."
	}
	return s
}

// FileName is the last element of an asset path.
func FileName(p string) string {
	return path.Base(CleanPath(p))
}

// FileStem is the file name without its final extension.
func FileStem(p string) string {
	name := FileName(p)
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// Ext is the lower-cased final extension including the dot.
func Ext(p string) string {
	return strings.ToLower(path.Ext(p))
}
