package loading

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"testing/fstest"
	"time"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/asset/assettest"
	"github.com/milk9111/assetloader/collection"
	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestInitCollectionFromServer(t *testing.T) {
	fsys := fstest.MapFS{
		"images/tree.png":   {Data: encodePNG(t, 3, 5)},
		"tiles/a.png":       {Data: encodePNG(t, 1, 1)},
		"tiles/b.png":       {Data: encodePNG(t, 1, 1)},
		"tiles/.keep":       {Data: []byte{}},
	}
	server := asset.NewServer(fsys, asset.WithWorkers(2))
	w := ecs.NewWorld()

	schema, err := collection.New(tilesetResource).
		Folder("tiles", "tiles", collection.Typed(asset.KindImage)).
		Build(func(f collection.Fields) (tileset, error) {
			return tileset{Tiles: f.Handles("tiles")}, nil
		})
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := InitCollection(ctx, w, server, schema, nil, time.Millisecond); err != nil {
		t.Fatalf("init collection: %v", err)
	}
	got, ok := ecs.Get(w, tilesetResource)
	if !ok || len(got.Tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %+v ok=%v", got, ok)
	}
	server.Wait()
}

func TestInitCollectionWithTable(t *testing.T) {
	store := assettest.New()
	sprite := store.Complete("hero.png", img())
	table := dynamic.NewTable(nil)
	table.Register("player", &dynamic.File{Path: "hero.png"})

	w := ecs.NewWorld()
	if err := InitCollection(context.Background(), w, store, heroCollection(t), table, time.Millisecond); err != nil {
		t.Fatalf("init collection: %v", err)
	}
	got, _ := ecs.Get(w, heroResource)
	if got.Sprite != sprite || !got.Mute {
		t.Fatalf("unexpected hero %+v", got)
	}
}

func TestInitCollectionFailures(t *testing.T) {
	cases := []struct {
		name   string
		script func(s *assettest.Store)
		ctx    func() (context.Context, context.CancelFunc)
		want   error
	}{
		{
			name:   "handle_failure",
			script: func(s *assettest.Store) { s.Fail("images/tree.png", errors.New("gone")) },
			ctx:    func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
			want:   asset.ErrHandleFailure,
		},
		{
			name:   "never_loads",
			script: func(*assettest.Store) {},
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 20*time.Millisecond)
			},
			want: context.DeadlineExceeded,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := assettest.New()
			store.Load("images/tree.png")
			c.script(store)
			ctx, cancel := c.ctx()
			defer cancel()

			w := ecs.NewWorld()
			err := InitCollection(ctx, w, store, sceneryCollection(t), nil, time.Millisecond)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			if ecs.Has(w, sceneryResource) {
				t.Fatalf("failed collection must not be installed")
			}
		})
	}
}

func TestMachineOverServer(t *testing.T) {
	fsys := fstest.MapFS{
		"images/tree.png":  {Data: encodePNG(t, 3, 5)},
		"level.assets.hcl": {Data: []byte(`asset "player" "file" { path = "images/tree.png" }`)},
	}
	server := asset.NewServer(fsys)
	h := &harness{w: ecs.NewWorld(), state: ecs.NewState[phase]()}
	if err := ecs.Insert(h.w, asset.StoreResource, asset.Store(server)); err != nil {
		t.Fatalf("insert store: %v", err)
	}
	if err := h.state.Init(h.w, phaseLoading); err != nil {
		t.Fatalf("init state: %v", err)
	}

	m := New(h.state, phaseLoading).
		ContinueTo(phaseMenu).
		OnFailureContinueTo(phaseBroken).
		DynamicFiles("level.assets.hcl").
		Collection(sceneryCollection(t)).
		Collection(heroCollection(t)).
		Build(h.w)

	deadline := time.Now().Add(5 * time.Second)
	for h.current() == phaseLoading && time.Now().Before(deadline) {
		h.w.Update()
		server.Wait()
	}

	if h.current() != phaseMenu {
		t.Fatalf("expected menu, got %v (err %v)", h.current(), m.Err())
	}
	s, _ := ecs.Get(h.w, sceneryResource)
	tree, ok := asset.Typed[image.Image](server, s.Tree)
	if !ok || tree.Bounds().Dx() != 3 {
		t.Fatalf("expected decoded tree image, got %v ok=%v", tree, ok)
	}
	hero, _ := ecs.Get(h.w, heroResource)
	if hero.Sprite != s.Tree {
		t.Fatalf("key and literal path should share one handle")
	}
}
