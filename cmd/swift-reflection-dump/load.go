package main

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	reflection "github.com/wippyai/swift-reflection"
	"github.com/wippyai/swift-reflection/image"
	"github.com/wippyai/swift-reflection/records"
)

// loadImages opens paths in parallel and registers them in argument order,
// so the first image on the command line wins lookups.
func loadImages(ctx context.Context, cfg settings, paths []string) (*reflection.Builder, error) {
	infos := make([]records.ReflectionInfo, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), max(len(paths), 1)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := image.Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := reflection.New(&cfg.Builder)
	for _, info := range infos {
		b.AddReflectionInfo(info)
	}
	return b, nil
}
