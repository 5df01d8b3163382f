package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/assetloader/logging"
)

func main() {
	root := flag.String("root", "", "load assets from this directory instead of the embedded ones")
	watch := flag.Bool("watch", false, "reload when files under -root change")
	debug := flag.Bool("debug", false, "enable debug logging")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	logger, err := logging.New(level, false)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("assetloader demo")

	game, err := NewGame(*root, *watch, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
