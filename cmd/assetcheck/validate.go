package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/milk9111/assetloader/asset"
	"github.com/milk9111/assetloader/dynamic"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Parse dynamic asset files and list their keys",
		ArgsUsage: "FILE...",
		Action:    validateAction,
	}
}

func validateAction(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("validate: no files given", 1)
	}

	fsys := os.DirFS(c.String("root"))
	reg := dynamic.NewRegistry()
	failed := 0
	for _, file := range files {
		entries, err := decodeFile(fsys, file, reg)
		if err != nil {
			fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", file, err)
			failed++
			continue
		}
		for _, e := range entries {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", file, e.Key, e.Variant)
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("validate: %d of %d files invalid", failed, len(files)), 1)
	}
	return nil
}

// decodeFile reads one dynamic asset file straight from fsys.
func decodeFile(fsys fs.FS, file string, reg *dynamic.Registry) ([]dynamic.Entry, error) {
	format, ok := dynamic.FormatFor(file, dynamic.DefaultEndings())
	if !ok {
		return nil, fmt.Errorf("%w: unrecognised file ending", dynamic.ErrMalformedConfig)
	}
	data, err := fs.ReadFile(fsys, asset.CleanPath(file))
	if err != nil {
		return nil, err
	}
	return format.Decode(file, data, reg)
}
