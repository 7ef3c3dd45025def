package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	reflection "github.com/wippyai/swift-reflection"
	"github.com/wippyai/swift-reflection/image"
	"github.com/wippyai/swift-reflection/records"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Register images as they appear in a directory",
	Long: `Watch a directory and register every image written into it. The field
section of each new image is printed as it is registered; images that are
not ELF or Mach-O files are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	wt := newWatcher(cmd.OutOrStdout(), image.Open)
	fmt.Fprintf(wt.out, "watching %s\n", dir)
	return wt.run(ctx, w.Events, w.Errors)
}

// watcher registers images reported by a file system watcher. A file is
// loaded again whenever its size or modification time changes, so an image
// caught mid-write is replaced once it is complete.
type watcher struct {
	b      *reflection.Builder
	out    io.Writer
	open   func(path string) (records.ReflectionInfo, error)
	stamps map[string]fileStamp
	order  []string
	images map[string]records.ReflectionInfo
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

func newWatcher(out io.Writer, open func(string) (records.ReflectionInfo, error)) *watcher {
	return &watcher{
		b:      reflection.New(&active.Builder),
		out:    out,
		open:   open,
		stamps: make(map[string]fileStamp),
		images: make(map[string]records.ReflectionInfo),
	}
}

func (wt *watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if err := wt.register(ev.Name); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

// register loads path and prints its field section. Files that cannot be
// loaded are logged and skipped, since a write event may arrive before the
// file is complete.
func (wt *watcher) register(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		reflection.Logger().Debug("skipping file", zap.String("path", path), zap.Error(err))
		return nil
	}
	stamp := fileStamp{size: fi.Size(), modTime: fi.ModTime()}
	if prev, ok := wt.stamps[path]; ok && prev.size == stamp.size && prev.modTime.Equal(stamp.modTime) {
		return nil
	}
	info, err := wt.open(path)
	if err != nil {
		reflection.Logger().Debug("skipping file", zap.String("path", path), zap.Error(err))
		return nil
	}
	wt.stamps[path] = stamp

	verb := "registered"
	if _, ok := wt.images[path]; ok {
		verb = "reloaded"
	} else {
		wt.order = append(wt.order, path)
	}
	wt.images[path] = info

	// Earlier registrations win lookups, so a reloaded image needs a fresh
	// builder to replace its previous contents.
	wt.b = reflection.New(&active.Builder)
	for _, p := range wt.order {
		wt.b.AddReflectionInfo(wt.images[p])
	}
	fmt.Fprintf(wt.out, "%s %s (%d images)\n", verb, filepath.Base(path), len(wt.order))

	// A single-image builder dumps only this image's records.
	single := reflection.New(&active.Builder)
	single.AddReflectionInfo(info)
	var buf bytes.Buffer
	if err := single.DumpFieldSection(&buf); err != nil {
		return err
	}
	_, err = io.WriteString(wt.out, colorize(buf.String()))
	return err
}
