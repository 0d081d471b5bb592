// Package game is the reference consumer driven by the scheduler: a terminal
// arena of bouncing, optionally Lua-steered bodies.
package game

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/l1jgo/tickframe/internal/config"
	"github.com/l1jgo/tickframe/internal/core/event"
	"github.com/l1jgo/tickframe/internal/core/sched"
	coresys "github.com/l1jgo/tickframe/internal/core/system"
	"github.com/l1jgo/tickframe/internal/scene"
	"github.com/l1jgo/tickframe/internal/scripting"
	"github.com/l1jgo/tickframe/internal/system"
	"github.com/l1jgo/tickframe/internal/world"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// fpsSmoothing weights the newest frame in the FPS moving average.
const fpsSmoothing = 0.1

// Options carries the game's collaborators.
type Options struct {
	FS       afero.Fs  // asset filesystem
	Out      io.Writer // render target
	Progress io.Writer // preload progress bars
	Logger   *zap.Logger
}

// Game implements sched.Consumer.
type Game struct {
	cfg      config.GameConfig
	fs       afero.Fs
	out      io.Writer
	progress io.Writer
	log      *zap.Logger

	// Event channels, usable before Init.
	Bounces  *event.Channel[world.Bounce]
	Despawns *event.Channel[world.Despawned]
	Resizes  *event.Channel[Resized]
	Stats    *event.Channel[FrameStats]

	scene    *scene.Scene
	scripts  []*scripting.Script
	engine   *scripting.Engine
	world    *world.World
	runner   *coresys.Runner
	renderer *Renderer
	onResize *event.Handler[Resized]

	// pendingSize packs cols<<32 | rows from RequestResize; 0 means none.
	pendingSize atomic.Uint64

	frames    uint64
	tickID    uint64
	runtime   float64
	blend     float64
	fps       float64
	lastFrame time.Duration
}

var _ sched.Consumer = (*Game)(nil)

func New(cfg config.GameConfig, opts Options) *Game {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Game{
		cfg:      cfg,
		fs:       opts.FS,
		out:      opts.Out,
		progress: opts.Progress,
		log:      opts.Logger,
		Bounces:  event.New[world.Bounce](),
		Despawns: event.New[world.Despawned](),
		Resizes:  event.New[Resized](),
		Stats:    event.New[FrameStats](),
	}
}

// World exposes the simulated arena. Nil before Init.
func (g *Game) World() *world.World { return g.world }

func (g *Game) Init() error {
	eng, err := scripting.NewEngine(g.scripts, g.log)
	if err != nil {
		return fmt.Errorf("init scripts: %w", err)
	}
	w := world.FromScene(g.scene)

	var missing error
	w.Each(func(b *world.Body) {
		if missing == nil && b.Script != "" && !eng.Has(b.Script) {
			missing = fmt.Errorf("body %q: %w: %s", b.Name, scripting.ErrNoFunction, b.Script)
		}
	})
	if missing != nil {
		eng.Close()
		return missing
	}

	g.engine = eng
	g.world = w
	g.runner = coresys.NewRunner()
	g.runner.Register(system.NewSteerSystem(w, eng))
	g.runner.Register(system.NewIntegrateSystem(w))
	g.runner.Register(system.NewBoundsSystem(w, g.Bounces))
	g.runner.Register(system.NewCleanupSystem(w, g.Despawns))
	g.renderer = NewRenderer(g.cfg.Columns, g.cfg.Rows)

	g.onResize = event.NewHandler(g.resized)
	g.Resizes.On(g.onResize)

	if g.cfg.Render {
		if _, err := io.WriteString(g.out, "\x1b[2J"); err != nil {
			return fmt.Errorf("clear screen: %w", err)
		}
	}
	g.log.Info("game initialized",
		zap.Int("bodies", w.Len()),
		zap.Int("systems", g.runner.Len()),
	)
	return nil
}

func (g *Game) Tick(step, runtime float64, tickID uint64) error {
	if err := g.runner.Tick(coresys.Step{Duration: step, Runtime: runtime, TickID: tickID}); err != nil {
		return err
	}
	g.tickID = tickID
	g.runtime = runtime
	return nil
}

func (g *Game) Update(now time.Duration) error {
	if size := g.pendingSize.Swap(0); size != 0 {
		g.Resize(int(size>>32), int(uint32(size)))
	}
	if g.frames > 0 {
		if dt := now - g.lastFrame; dt > 0 {
			inst := 1 / dt.Seconds()
			if g.fps == 0 {
				g.fps = inst
			} else {
				g.fps += (inst - g.fps) * fpsSmoothing
			}
		}
	}
	g.lastFrame = now
	g.frames++
	return nil
}

func (g *Game) Render(blend float64, now time.Duration) error {
	g.blend = blend
	if !g.cfg.Render {
		return nil
	}
	return g.draw(blend)
}

func (g *Game) Idle(deadline sched.Deadline) error {
	st := FrameStats{
		Frames:     g.frames,
		TickID:     g.tickID,
		Runtime:    g.runtime,
		Blend:      g.blend,
		FPS:        g.fps,
		IdleBudget: deadline.TimeRemaining(),
	}
	g.Stats.Emit(st)
	return nil
}

// Resize announces a new render surface size. Subscribers of Resizes run
// synchronously; the game itself redraws at blend 0.
func (g *Game) Resize(cols, rows int) {
	g.Resizes.Emit(Resized{Columns: cols, Rows: rows})
}

// RequestResize records a new surface size to apply at the start of the next
// Update. Safe from any goroutine; only the latest request is kept.
// Non-positive sizes are ignored.
func (g *Game) RequestResize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	g.pendingSize.Store(uint64(uint32(cols))<<32 | uint64(uint32(rows)))
}

// Close releases the script VM and unsubscribes internal handlers.
func (g *Game) Close() {
	if g.onResize != nil {
		g.Resizes.Off(g.onResize)
	}
	if g.engine != nil {
		g.engine.Close()
	}
}

func (g *Game) resized(r Resized) {
	g.renderer.Resize(r.Columns, r.Rows)
	if !g.cfg.Render {
		return
	}
	if err := g.draw(0); err != nil {
		g.log.Warn("redraw after resize failed", zap.Error(err))
	}
}

func (g *Game) draw(blend float64) error {
	hud := fmt.Sprintf("tick %d  t=%.2fs  blend %.2f  fps %.0f", g.tickID, g.runtime, blend, g.fps)
	frame := g.renderer.Draw(g.world, blend, hud)
	_, err := io.WriteString(g.out, "\x1b[H"+frame+"\n")
	return err
}
