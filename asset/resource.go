package asset

import "github.com/milk9111/assetloader/ecs"

// StoreResource is where a world keeps the store its loading states use.
var StoreResource = ecs.NewResource[Store]()
