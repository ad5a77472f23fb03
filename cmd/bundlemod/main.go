// Command bundlemod inspects, extracts, and repacks game-asset bundle
// archives.
//
// Repacking replaces entry payloads with files from a mod directory whose
// layout mirrors archive-relative entry names, then writes a new bundle
// with recomputed offsets. With -install the original is backed up to
// <input>.bak and the new bundle is promoted into its place.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/velesmod/bundle"
)

const progressEvery = 100

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  bundlemod inspect <bundle>...
  bundlemod extract -out <dir> [-decode] <bundle>
  bundlemod repack -mods <dir> [-out <path>] [-install] [-footer-pad] [-jobs N] <bundle>...

Run 'bundlemod <command> -h' for command flags.
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "inspect":
		err = runInspect(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "repack":
		err = runRepack(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger builds the diagnostic logger shared by all commands.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// progressPrinter reports load progress every progressEvery entries, the
// cadence large bundles are expected to be watched at.
func progressPrinter() bundle.ProgressFunc {
	return func(ev bundle.ProgressEvent) {
		if ev.Stage != bundle.StageLoading {
			return
		}
		if ev.EntriesDone%progressEvery == 0 || ev.EntriesDone == ev.EntriesTotal {
			fmt.Printf("Loaded %d / %d entries...\n", ev.EntriesDone, ev.EntriesTotal)
		}
	}
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("inspect: no bundle files given")
	}

	logger := newLogger(*verbose)
	for _, path := range fs.Args() {
		a, err := bundle.Open(path, bundle.WithLogger(logger))
		if err != nil {
			return err
		}
		h := a.Header()
		fmt.Printf("%s: entries=%d size=%d secondarySize=%d dataOffset=%d\n",
			path, a.Len(), h.TotalSize, h.SecondarySize, h.DataOffset)
		for _, e := range a.Entries() {
			id := e.ID()
			fmt.Printf("  %s size=%d storedSize=%d compression=%s offset=%d aligned=%t modified=%#x id=%x digest=%s\n",
				e.Name(), e.UncompressedSize(), e.CompressedSize(), e.DeclaredCompression(),
				e.Offset(), e.Aligned(), e.ModTimeRaw(), id, digest.FromBytes(e.Payload()))
		}
	}
	return nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	out := fs.String("out", "", "destination directory (required)")
	decode := fs.Bool("decode", false, "attempt best-effort decompression of passthrough entries")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("extract: -out is required")
	}
	if fs.NArg() != 1 {
		return errors.New("extract: exactly one bundle file expected")
	}

	logger := newLogger(*verbose)
	a, err := bundle.Open(fs.Arg(0),
		bundle.WithLogger(logger),
		bundle.WithProgress(progressPrinter()),
	)
	if err != nil {
		return err
	}

	for _, e := range a.Entries() {
		content := e.Payload()
		if *decode {
			expanded, err := e.Expand()
			if err != nil {
				logger.Warn("decode failed, extracting raw bytes", "name", e.Name(), "error", err)
			} else {
				content = expanded
			}
		}
		dest := filepath.Join(*out, filepath.FromSlash(e.Name()))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("extract %s: %w", e.Name(), err)
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return fmt.Errorf("extract %s: %w", e.Name(), err)
		}
	}
	fmt.Printf("Extracted %d entries to %s\n", a.Len(), *out)
	return nil
}

func runRepack(args []string) error {
	fs := flag.NewFlagSet("repack", flag.ExitOnError)
	mods := fs.String("mods", "", "mod directory mirroring entry names (required)")
	out := fs.String("out", "", "output path (single bundle only; default <input>.new)")
	install := fs.Bool("install", false, "back up the original and promote the output into its place")
	footerPad := fs.Bool("footer-pad", false, "pad the output to a 16-byte boundary")
	jobs := fs.Int("jobs", 1, "bundles to process concurrently")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mods == "" {
		return errors.New("repack: -mods is required")
	}
	if fs.NArg() == 0 {
		return errors.New("repack: no bundle files given")
	}
	if *out != "" && fs.NArg() > 1 {
		return errors.New("repack: -out only applies to a single bundle")
	}

	logger := newLogger(*verbose)
	src, err := bundle.OpenDirSource(*mods)
	if err != nil {
		return err
	}
	defer src.Close()

	// Bundles are independent of one another; each is processed strictly
	// sequentially inside repackOne.
	var g errgroup.Group
	g.SetLimit(*jobs)
	for _, input := range fs.Args() {
		outPath := *out
		if outPath == "" {
			outPath = input + ".new"
		}
		g.Go(func() error {
			return repackOne(logger, src, input, outPath, *install, *footerPad)
		})
	}
	return g.Wait()
}

func repackOne(logger *slog.Logger, src *bundle.DirSource, input, output string, install, footerPad bool) error {
	a, err := bundle.Open(input,
		bundle.WithLogger(logger.With("bundle", input)),
		bundle.WithFooterPad(footerPad),
		bundle.WithProgress(progressPrinter()),
	)
	if err != nil {
		return err
	}

	replaced := a.ApplyOverrides(src)
	fmt.Printf("%s: %d of %d entries overridden\n", input, replaced, a.Len())

	if err := a.WriteFile(output); err != nil {
		return err
	}
	fmt.Printf("Bundle successfully written to %s\n", output)

	if install {
		return installBundle(logger, input, output)
	}
	return nil
}

// installBundle renames the original out of the way and promotes the
// freshly written bundle into its place. Failures leave the written
// output intact so the swap can be finished by hand.
func installBundle(logger *slog.Logger, original, output string) error {
	backup := original + ".bak"
	if err := os.Rename(original, backup); err != nil {
		logger.Warn("failed to back up original, mod not installed",
			"original", original, "backup", backup, "error", err)
		logger.Warn("you can finish the installation manually", "move", output, "to", original)
		return nil
	}
	if err := os.Rename(output, original); err != nil {
		logger.Warn("failed to promote output, mod not installed",
			"output", output, "destination", original, "error", err)
		logger.Warn("you can finish the installation manually", "move", output, "to", original)
		return nil
	}
	fmt.Printf("Modified bundle installed over %s (backup at %s)\n", original, backup)
	return nil
}
