package study

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Formats lists every export format in download order.
var Formats = []string{FormatJSON, FormatText, FormatYAML}

// WriteFiles exports c into dir once per format, writing the files
// concurrently. It returns the written paths in the order of formats.
func WriteFiles(ctx context.Context, c *GeneratedContent, dir string, formats ...string) ([]string, error) {
	if len(formats) == 0 {
		formats = Formats
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create export directory: %w", err)
	}

	paths := make([]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			name, data, err := Export(c, format)
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
				return fmt.Errorf("unable to write %s: %w", name, err)
			}
			log.Debug("exported", "format", format, "path", path, "bytes", len(data))
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
