package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/assetloader/asset"
)

// Handle ids are only unique within one store.
type imageKey struct {
	store asset.Store
	id    asset.HandleID
}

var images = map[imageKey]*ebiten.Image{}

// RegisterImage stores a GPU image for a handle of store.
func RegisterImage(store asset.Store, id asset.HandleID, img *ebiten.Image) {
	if store == nil || id == 0 || img == nil {
		return
	}
	images[imageKey{store: store, id: id}] = img
}

// GetImage returns a cached image by store and handle id.
func GetImage(store asset.Store, id asset.HandleID) *ebiten.Image {
	if store == nil || id == 0 {
		return nil
	}
	return images[imageKey{store: store, id: id}]
}

// Forget drops cached images of store, for example after a reload. With no
// ids every image of that store is dropped.
func Forget(store asset.Store, ids ...asset.HandleID) {
	keys := make([]imageKey, 0, len(ids))
	if len(ids) == 0 {
		for k := range images {
			if k.store == store {
				keys = append(keys, k)
			}
		}
	}
	for _, id := range ids {
		keys = append(keys, imageKey{store: store, id: id})
	}
	for _, k := range keys {
		if img, ok := images[k]; ok {
			img.Deallocate()
			delete(images, k)
		}
	}
}
