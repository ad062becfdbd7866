package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/inamate/designer/internal/asset"
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/export"
	"github.com/inamate/designer/internal/raster"
)

// Editors often write a file in several steps; wait for them to settle.
const watchDebounce = 150 * time.Millisecond

type renderOpts struct {
	output  string
	profile string
	watch   bool
	flags   profile
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{flags: defaultProfile()}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a document to PNG or JPEG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := defaultProfile()
			if opts.profile != "" {
				var err error
				if p, err = loadProfile(opts.profile); err != nil {
					return err
				}
			}
			p.merge(cmd.Flags(), opts.flags)

			r, err := newRenderer(args[0], opts.output, p)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			if err := r.render(cmd.Context(), logger); err != nil {
				if !opts.watch {
					return err
				}
				logger.Error("render failed", "err", err)
			}
			if opts.watch {
				return r.watch(cmd.Context(), logger)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format's extension)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "TOML render profile")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render whenever the input changes")
	cmd.Flags().StringVarP(&opts.flags.Format, "format", "f", opts.flags.Format, "output format: png, jpeg")
	cmd.Flags().Float64VarP(&opts.flags.Scale, "scale", "s", opts.flags.Scale, "render scale (0-8]")
	cmd.Flags().IntVarP(&opts.flags.Quality, "quality", "q", opts.flags.Quality, "JPEG quality 1-100")
	cmd.Flags().BoolVar(&opts.flags.BleedSafe, "bleed-safe", false, "draw bleed and safe-area guides")
	cmd.Flags().StringVar(&opts.flags.Assets, "assets", "", "asset directory for resource ids")

	return cmd
}

type renderer struct {
	input   string
	output  string
	options export.Options
	service *export.Service
}

func newRenderer(input, output string, p profile) (*renderer, error) {
	format, err := p.validate()
	if err != nil {
		return nil, err
	}

	var store *asset.Store
	if p.Assets != "" {
		if store, err = asset.NewStore(p.Assets); err != nil {
			return nil, err
		}
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + string(format)
	}
	return &renderer{
		input:  input,
		output: output,
		options: export.Options{
			Format:    format,
			Scale:     p.Scale,
			Quality:   p.Quality,
			BleedSafe: p.BleedSafe,
		},
		service: export.NewService(asset.NewResolver(store, nil).AllowPrivateNetworks(), nil, 0),
	}, nil
}

func (r *renderer) render(ctx context.Context, logger *charmlog.Logger) error {
	prog := newProgress(logger)

	doc, err := readDocument(r.input)
	if err != nil {
		return err
	}
	data, err := r.service.Render(ctx, doc, r.options)
	if err != nil {
		return fmt.Errorf("render %s: %w", r.input, err)
	}
	if err := os.WriteFile(r.output, data, 0o644); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", r.output))
	return nil
}

// watch re-renders on every change to the input until ctx is done. The
// directory is watched rather than the file so that editors replacing
// the file by rename are still seen.
func (r *renderer) watch(ctx context.Context, logger *charmlog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target, err := filepath.Abs(r.input)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info("watching for changes", "file", r.input)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if abs, _ := filepath.Abs(ev.Name); abs != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher", "err", err)
		case <-debounce:
			debounce = nil
			if err := r.render(ctx, logger); err != nil {
				logger.Error("render failed", "err", err)
			}
		}
	}
}

func readDocument(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%s: %w", path, raster.ErrNoRoot)
	}
	return doc, nil
}
