package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/dynamic"
	"github.com/milk9111/assetloader/ecs"
	"github.com/milk9111/assetloader/loading"
	"github.com/milk9111/assetloader/logging"
)

type checkPhase int

const (
	phaseLoading checkPhase = iota
	phaseDone
	phaseFailed
)

func (p checkPhase) String() string {
	switch p {
	case phaseDone:
		return "done"
	case phaseFailed:
		return "failed"
	default:
		return "loading"
	}
}

const tickInterval = 16 * time.Millisecond

func loadCommand(cfg config) *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Load every key of the given dynamic asset files through a loading phase",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "files decoded at once",
				Value: cfg.Workers,
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "keep running and load again when files under root change",
				Value: cfg.Watch,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "give up after this long, 0 waits forever",
				Value: cfg.Timeout,
			},
		},
		Action: loadAction,
	}
}

func loadAction(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("load: no files given", 1)
	}
	logger, err := logging.New(c.String("log-level"), c.Bool("log-json"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = logger.Sync() }()

	root := c.String("root")
	fsys := os.DirFS(root)

	// keys are read up front so the manifest knows its fields; the loading
	// phase reads the files again through the store.
	reg := dynamic.NewRegistry()
	table := dynamic.NewTable(logger)
	for _, file := range files {
		entries, err := decodeFile(fsys, file, reg)
		if err != nil {
			return cli.Exit(fmt.Sprintf("load: %s: %v", file, err), 1)
		}
		table.Merge(file, entries)
	}
	schema, err := manifestSchema(table)
	if err != nil {
		return cli.Exit(fmt.Sprintf("load: %v", err), 1)
	}

	server := asset.NewServer(fsys, asset.WithLogger(logger), asset.WithWorkers(c.Int("workers")))
	w := ecs.NewWorld()
	if err := ecs.Insert(w, asset.StoreResource, asset.Store(server)); err != nil {
		return err
	}
	state := ecs.NewState[checkPhase]()
	if err := state.Init(w, phaseLoading); err != nil {
		return err
	}

	lastDone := -1
	machine := loading.New(state, phaseLoading).
		ContinueTo(phaseDone).
		OnFailureContinueTo(phaseFailed).
		DynamicFiles(files...).
		Registry(reg).
		Collection(schema).
		WithLogger(logger).
		Progress(loading.ProgressSinkFunc(func(phase string, p loading.Progress) {
			if p.Done != lastDone {
				lastDone = p.Done
				logger.Info("progress", zap.Int("done", p.Done), zap.Int("total", p.Total))
			}
		})).
		Build(w)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	if timeout := c.Duration("timeout"); timeout > 0 && !c.Bool("watch") {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var changes <-chan string
	if c.Bool("watch") {
		watcher, err := asset.NewWatcher(server, root, watchDirs(fsys)...)
		if err != nil {
			return cli.Exit(fmt.Sprintf("load: watch %s: %v", root, err), 1)
		}
		defer watcher.Close()
		changes = watcher.Events
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	reported := checkPhase(-1)
	for {
		w.Update()

		current, _ := state.Current(w)
		if current != reported {
			reported = current
			switch current {
			case phaseDone:
				m, _ := ecs.Get(w, manifestResource)
				for _, line := range m.lines() {
					fmt.Fprintln(c.App.Writer, line)
				}
				if changes == nil {
					return nil
				}
			case phaseFailed:
				if changes == nil {
					return cli.Exit(fmt.Sprintf("load: %v", machine.Err()), 1)
				}
				logger.Error("load failed, waiting for changes", zap.Error(machine.Err()))
			}
		}

		select {
		case <-ctx.Done():
			if changes != nil && errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return cli.Exit(fmt.Sprintf("load: %v (progress %d/%d)", ctx.Err(), machine.Progress().Done, machine.Progress().Total), 2)
		case path, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			logger.Info("asset changed, loading again", zap.String("path", path))
			state.Set(w, phaseLoading)
		case <-ticker.C:
		}
	}
}

// watchDirs lists every visible directory under the root; fsnotify does not
// recurse.
func watchDirs(fsys fs.FS) []string {
	dirs := []string{"."}
	_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || p == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		dirs = append(dirs, p)
		return nil
	})
	return dirs
}
