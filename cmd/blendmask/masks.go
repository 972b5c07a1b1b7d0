package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/blendmask/internal/config"
	"github.com/Faultbox/blendmask/internal/library"
	"github.com/Faultbox/blendmask/pkg/formats"
	"github.com/Faultbox/blendmask/pkg/mask"
)

const masksUsage = "Usage: blendmask masks [-db lib.db] ls | get NAME | put NAME masks.json | rm NAME"

var errMasksUsage = errors.New(masksUsage)

func cmdMasks(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("masks", flag.ExitOnError)
	db := fs.String("db", cfg.Library.Path, "SQLite mask library")
	fs.Parse(args)

	if *db == "" || fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, masksUsage)
		os.Exit(1)
	}

	lib, err := library.Open(*db)
	if err != nil {
		return err
	}
	defer lib.Close()

	return runMasks(context.Background(), lib, fs.Args(), os.Stdout)
}

// runMasks executes one library action and prints its result to out.
func runMasks(ctx context.Context, lib *library.Library, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errMasksUsage
	}

	switch action := args[0]; {
	case action == "ls" && len(args) == 1:
		entries, err := lib.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintln(out, e.Name+
				countStyle.Render(fmt.Sprintf("%d", e.VertexCount))+
				"  "+subtleStyle.Render(e.UpdatedAt.Format("2006-01-02 15:04:05")))
		}
		fmt.Fprintf(out, "%d masks\n", len(entries))
		return nil

	case action == "get" && len(args) == 2:
		w, err := lib.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return formats.WriteMasks(out, map[string]mask.Weights{args[1]: w})

	case action == "put" && len(args) == 3:
		masks, err := formats.ParseMasksFile(args[2])
		if err != nil {
			return err
		}
		w, err := pickMask(masks, args[1])
		if err != nil {
			return fmt.Errorf("%s: %w", args[2], err)
		}
		if err := lib.Put(ctx, args[1], w); err != nil {
			return err
		}
		fmt.Fprintf(out, "Stored %s (%d weights)\n", args[1], len(w))
		return nil

	case action == "rm" && len(args) == 2:
		if err := lib.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %s\n", args[1])
		return nil
	}
	return errMasksUsage
}

// pickMask returns the entry called name, or the only entry of a
// single-mask file so it can be stored under a new name.
func pickMask(masks map[string]mask.Weights, name string) (mask.Weights, error) {
	if w, ok := masks[name]; ok {
		return w, nil
	}
	if len(masks) == 1 {
		for _, w := range masks {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: no mask %q among %d entries", mask.ErrNotFound, name, len(masks))
}
