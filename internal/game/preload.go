package game

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/l1jgo/tickframe/internal/scene"
	"github.com/l1jgo/tickframe/internal/scripting"
	"github.com/spf13/afero"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Preload reads the scene manifest and compiles every steering script
// concurrently. Nothing is kept unless all assets load.
func (g *Game) Preload(ctx context.Context) error {
	scriptsDir := filepath.Join(g.cfg.AssetsDir, g.cfg.ScriptsDir)
	names, err := listScripts(g.fs, scriptsDir)
	if err != nil {
		return fmt.Errorf("list scripts: %w", err)
	}

	progress, bar := g.newProgress(ctx, int64(len(names)+1))

	eg, egCtx := errgroup.WithContext(ctx)
	var sc *scene.Scene
	eg.Go(func() error {
		s, err := scene.Load(g.fs, filepath.Join(g.cfg.AssetsDir, g.cfg.Scene))
		if err != nil {
			return err
		}
		sc = s
		bar.Increment()
		return nil
	})

	scripts := make([]*scripting.Script, len(names))
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			src, err := afero.ReadFile(g.fs, filepath.Join(scriptsDir, name))
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			s, err := scripting.Compile(name, src)
			if err != nil {
				return err
			}
			scripts[i] = s
			bar.Increment()
			return nil
		})
	}

	err = eg.Wait()
	if err != nil {
		bar.Abort(false)
	}
	progress.Wait()
	if err != nil {
		return fmt.Errorf("preload: %w", err)
	}

	g.scene = sc
	g.scripts = scripts
	g.log.Info("preload complete",
		zap.String("scene", sc.Name),
		zap.Int("bodies", len(sc.Bodies)),
		zap.Int("scripts", len(scripts)),
	)
	return nil
}

func (g *Game) newProgress(ctx context.Context, total int64) (*mpb.Progress, *mpb.Bar) {
	out := g.progress
	if !g.cfg.Progress || out == nil {
		out = io.Discard
	}
	p := mpb.NewWithContext(ctx, mpb.WithOutput(out), mpb.WithWidth(48))
	name := "Preloading"
	bar := p.New(total,
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.CountersNoUnit("%d / %d"), "done"),
		),
	)
	return p, bar
}

// listScripts returns the .lua files of dir in name order. A missing
// directory means no scripts.
func listScripts(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
