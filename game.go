package main

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/d5/tengo/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/assets"
	"github.com/milk9111/assetloader/collection"
	"github.com/milk9111/assetloader/ecs"
	"github.com/milk9111/assetloader/ecs/render"
	"github.com/milk9111/assetloader/loading"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type gamePhase int

const (
	phaseLoading gamePhase = iota
	phaseMenu
	phaseFailed
)

func (p gamePhase) String() string {
	switch p {
	case phaseMenu:
		return "menu"
	case phaseFailed:
		return "failed"
	default:
		return "loading"
	}
}

type imageAssets struct {
	Background asset.Handle
	Tiles      map[string]asset.Handle
}

type levelAssets struct {
	Hero     asset.Handle
	Crate    asset.Handle
	Greeting asset.Handle
	Music    []asset.Handle
}

// scene is built once both collections are installed.
type scene struct {
	Greeting string
	Clips    *render.AnimationLibrary
}

var (
	imageAssetsResource = ecs.NewResource[imageAssets]()
	levelAssetsResource = ecs.NewResource[levelAssets]()
	sceneResource       = ecs.NewResource[scene]()
	gameState           = ecs.NewState[gamePhase]()
)

type Game struct {
	world    *ecs.World
	store    *asset.Server
	machine  *loading.Machine[gamePhase]
	progress *loading.Counter
	watcher  *asset.Watcher
	logger   *zap.Logger
}

func NewGame(root string, watch bool, logger *zap.Logger) (*Game, error) {
	if watch && root == "" {
		return nil, errors.New("demo: -watch needs -root")
	}
	store := asset.NewServer(assets.Open(root), asset.WithLogger(logger))

	images, err := collection.New(imageAssetsResource).
		File("background", "images/background.png", collection.Typed(asset.KindImage)).
		ListKey("tiles", "tiles", collection.Typed(asset.KindImage), collection.Mapped(collection.MapByFileStem)).
		Build(func(f collection.Fields) (imageAssets, error) {
			return imageAssets{Background: f.Handle("background"), Tiles: f.Mapped("tiles")}, nil
		})
	if err != nil {
		return nil, err
	}
	level, err := collection.New(levelAssetsResource).
		Key("hero", "hero").
		Key("crate", "crate").
		Key("greeting", "greeting", collection.Typed(asset.KindScript)).
		ListKey("music", "music", collection.Optional()).
		Build(func(f collection.Fields) (levelAssets, error) {
			return levelAssets{
				Hero:     f.Handle("hero"),
				Crate:    f.Handle("crate"),
				Greeting: f.Handle("greeting"),
				Music:    f.Handles("music"),
			}, nil
		})
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	if err := ecs.Insert(w, asset.StoreResource, asset.Store(store)); err != nil {
		return nil, err
	}
	if err := gameState.Init(w, phaseLoading); err != nil {
		return nil, err
	}

	progress := loading.NewCounter()
	machine := loading.New(gameState, phaseLoading).
		ContinueTo(phaseMenu).
		OnFailureContinueTo(phaseFailed).
		DynamicFiles("dynamic/level.assets.yaml", "dynamic/ui.assets.hcl").
		Collection(images).
		Collection(level).
		Init(loading.InitResource(sceneResource, buildScene)).
		Progress(progress).
		WithLogger(logger).
		Build(w)

	g := &Game{
		world:    w,
		store:    store,
		machine:  machine,
		progress: progress,
		logger:   logger,
	}
	if watch {
		g.watcher, err = asset.NewWatcher(store, root, "images", "images/tiles", "dynamic", "scripts")
		if err != nil {
			return nil, fmt.Errorf("demo: watch %s: %w", root, err)
		}
	}
	return g, nil
}

// buildScene runs the greeting script and sets up the hero animation.
func buildScene(v ecs.View) (scene, error) {
	store, _ := ecs.Lookup(v, asset.StoreResource)
	level, ok := ecs.Lookup(v, levelAssetsResource)
	if !ok {
		return scene{}, errors.New("level assets not installed")
	}

	compiled, ok := asset.Typed[*tengo.Compiled](store, level.Greeting)
	if !ok {
		return scene{}, errors.New("greeting is not a script")
	}
	run := compiled.Clone()
	if err := run.Run(); err != nil {
		return scene{}, fmt.Errorf("run greeting: %w", err)
	}

	clips := render.NewAnimationLibrary()
	clips.Register("hero_idle", render.AnimationClip{Atlas: level.Hero, Frames: []int{0, 1, 2, 3}, FPS: 6})
	return scene{Greeting: run.Get("message").String(), Clips: clips}, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reload()
	}
	if g.watcher != nil {
		select {
		case path, ok := <-g.watcher.Events:
			if ok {
				g.logger.Info("asset changed", zap.String("path", path))
				g.reload()
			}
		default:
		}
	}

	g.world.Update()
	return nil
}

// reload enters the loading phase again; every collection is resolved from
// scratch.
func (g *Game) reload() {
	render.Forget(g.store)
	g.progress.Reset()
	gameState.Set(g.world, phaseLoading)
}

func (g *Game) Draw(screen *ebiten.Image) {
	phase, _ := gameState.Current(g.world)
	switch phase {
	case phaseLoading:
		g.drawLoading(screen)
	case phaseMenu:
		if err := g.drawMenu(screen); err != nil {
			ebitenutil.DebugPrint(screen, err.Error())
		}
	case phaseFailed:
		ebitenutil.DebugPrint(screen, fmt.Sprintf("loading failed, press R to retry\n\n%v", g.machine.Err()))
	}
}

func (g *Game) drawLoading(screen *ebiten.Image) {
	p := g.progress.Total()
	const barW, barH = 600, 24
	x := float32(baseWidth-barW) / 2
	y := float32(baseHeight-barH) / 2
	vector.FillRect(screen, x, y, barW, barH, color.NRGBA{R: 40, G: 40, B: 40, A: 255}, false)
	vector.FillRect(screen, x, y, barW*float32(p.Fraction()), barH, color.NRGBA{R: 90, G: 200, B: 120, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("loading %d/%d", p.Done, p.Total), int(x), int(y)-20)
}

func (g *Game) drawMenu(screen *ebiten.Image) error {
	images, _ := ecs.Get(g.world, imageAssetsResource)
	sc, _ := ecs.Get(g.world, sceneResource)

	bg, err := render.Image(g.store, images.Background)
	if err != nil {
		return err
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(baseWidth)/float64(bg.Bounds().Dx()), float64(baseHeight)/float64(bg.Bounds().Dy()))
	screen.DrawImage(bg, op)

	i := 0
	for _, name := range []string{"grass", "stone", "water"} {
		h, ok := images.Tiles[name]
		if !ok {
			continue
		}
		tile, err := render.Image(g.store, h)
		if err != nil {
			return err
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(4, 4)
		op.GeoM.Translate(float64(200+i*80), 520)
		screen.DrawImage(tile, op)
		i++
	}

	if clip, ok := sc.Clips.Get("hero_idle"); ok {
		frame, err := render.AtlasFrame(g.store, clip.Atlas, clip.Frame(g.world.Tick(), ebiten.TPS()))
		if err != nil {
			return err
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(6, 6)
		op.GeoM.Translate(600, 400)
		screen.DrawImage(frame, op)
	}

	level, _ := ecs.Get(g.world, levelAssetsResource)
	crate, tint, err := render.Material(g.store, level.Crate)
	if err != nil {
		return err
	}
	cop := &ebiten.DrawImageOptions{}
	cop.GeoM.Scale(5, 5)
	cop.GeoM.Translate(800, 440)
	cop.ColorScale = tint
	screen.DrawImage(crate, cop)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\nFPS: %.2f    R: reload", sc.Greeting, ebiten.ActualFPS()))
	return nil
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
