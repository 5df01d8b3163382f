package asset

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Loader turns raw file content into an asset value.
type Loader struct {
	Kind   Kind
	Decode func(path string, data []byte) (any, error)
}

// DefaultLoaders maps lower-cased extensions to the built-in loaders. Files
// with any other extension load as raw bytes.
func DefaultLoaders() map[string]Loader {
	img := Loader{Kind: KindImage, Decode: decodeImage}
	audio := Loader{Kind: KindAudio, Decode: rawBytes}
	script := Loader{Kind: KindScript, Decode: compileScript}
	return map[string]Loader{
		".png":   img,
		".jpg":   img,
		".jpeg":  img,
		".gif":   img,
		".bmp":   img,
		".webp":  img,
		".wav":   audio,
		".ogg":   audio,
		".mp3":   audio,
		".tengo": script,
	}
}

// KindByExtension reports the kind the default loaders give a path.
func KindByExtension(p string) Kind {
	if l, ok := DefaultLoaders()[Ext(p)]; ok {
		return l.Kind
	}
	return KindBytes
}

var bytesLoader = Loader{Kind: KindBytes, Decode: rawBytes}

func rawBytes(_ string, data []byte) (any, error) {
	return data, nil
}

func decodeImage(path string, data []byte) (any, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	return img, nil
}

// compileScript compiles a tengo script with the full stdlib available. The
// compiled program is shared; callers Clone it before running.
func compileScript(path string, data []byte) (any, error) {
	script := tengo.NewScript(data)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile script %q: %w", path, err)
	}
	return compiled, nil
}
