package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l1jgo/tickframe/internal/config"
	"github.com/l1jgo/tickframe/internal/core/event"
	"github.com/l1jgo/tickframe/internal/core/sched"
	"github.com/l1jgo/tickframe/internal/game"
	"github.com/l1jgo/tickframe/internal/host"
	"github.com/l1jgo/tickframe/internal/world"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var runFlags = []cli.Flag{
	cli.Float64Flag{
		Name:  "tick-rate, t",
		Usage: "override [scheduler] tick_rate",
	},
	cli.DurationFlag{
		Name:  "duration, d",
		Usage: "stop after this much wall time (0 runs until interrupted)",
	},
}

var replayFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "frames, n",
		Value: 600,
		Usage: "number of frames to deliver",
	},
	cli.DurationFlag{
		Name:  "interval, i",
		Usage: "synthetic time between frames (default: one refresh period)",
	},
	cli.BoolFlag{
		Name:  "render",
		Usage: "draw every frame to stdout",
	},
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("tick-rate") {
		cfg.Scheduler.TickRate = c.Float64("tick-rate")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	loop, err := host.NewLoop(cfg.Host.RefreshRate, log.Named("host"))
	if err != nil {
		return err
	}
	g := game.New(cfg.Game, game.Options{
		FS:       afero.NewOsFs(),
		Out:      c.App.Writer,
		Progress: os.Stderr,
		Logger:   log.Named("game"),
	})
	defer g.Close()
	watchBounces(g, log)

	// The session checks ctx at its checkpoints; the loop itself keeps
	// running on a background context so it drains once the session ends.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ss, err := newScheduler(loop, loop, cfg, log).Run(ctx, g, cfg.Scheduler.TickRate)
	if err != nil {
		return err
	}
	if d := c.Duration("duration"); d > 0 {
		t := time.AfterFunc(d, ss.Stop)
		defer t.Stop()
	}
	if cfg.Game.Render {
		stopResize := watchResize(g, log)
		defer stopResize()
	}
	log.Info("running",
		zap.Float64("tick_rate", cfg.Scheduler.TickRate),
		zap.Duration("frame_interval", ss.FrameInterval()),
		zap.Duration("refresh_interval", loop.Interval()),
	)

	loopErr := loop.Run(context.Background())
	logStats(log, ss.Stats())
	if err := ss.Err(); err != nil {
		return err
	}
	return loopErr
}

func replayAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.Game.Render = c.Bool("render")
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	frames := c.Int("frames")
	if frames <= 0 {
		return fmt.Errorf("replay: frames must be positive, got %d", frames)
	}
	interval := c.Duration("interval")
	if interval <= 0 {
		interval = time.Duration(float64(time.Second) / cfg.Host.RefreshRate)
	}

	m := host.NewManual(0, interval/2)
	g := game.New(cfg.Game, game.Options{
		FS:       afero.NewOsFs(),
		Out:      c.App.Writer,
		Progress: os.Stderr,
		Logger:   log.Named("game"),
	})
	defer g.Close()

	var bounces, despawns int
	g.Bounces.On(event.NewHandler(func(world.Bounce) { bounces++ }))
	g.Despawns.On(event.NewHandler(func(world.Despawned) { despawns++ }))

	ss, err := newScheduler(m, m, cfg, log).Run(context.Background(), g, cfg.Scheduler.TickRate)
	if err != nil {
		return err
	}
	for i := 0; i < frames; i++ {
		if err := m.Step(interval); err != nil {
			return err
		}
	}
	ss.Stop()
	if err := m.Step(interval); err != nil {
		return err
	}

	st := ss.Stats()
	fmt.Fprintf(c.App.Writer, "frames=%d ticks=%d runtime=%.3fs unsimulated=%.4fs discarded=%d bounces=%d despawns=%d\n",
		st.Frames, st.TickID, st.SimulatedRuntime, st.UnsimulatedTime, st.DiscardedSteps, bounces, despawns)
	return nil
}

func newScheduler(clock sched.FrameClock, idle sched.IdleScheduler, cfg *config.Config, log *zap.Logger) *sched.Scheduler {
	return sched.New(clock, idle,
		sched.WithLogger(log.Named("sched")),
		sched.WithMaxBacklog(cfg.Scheduler.MaxBacklog),
	)
}

// watchBounces logs every wall bounce at debug level, the first one at info
// level, and despawns.
func watchBounces(g *game.Game, log *zap.Logger) {
	g.Bounces.On(event.NewHandler(func(b world.Bounce) {
		log.Debug("bounce",
			zap.String("body", b.Body),
			zap.Stringer("wall", b.Wall),
			zap.Uint64("tick_id", b.TickID),
		)
	}))
	g.Bounces.Once(event.NewHandler(func(b world.Bounce) {
		log.Info("first bounce", zap.String("body", b.Body), zap.Uint64("tick_id", b.TickID))
	}))
	g.Despawns.On(event.NewHandler(func(d world.Despawned) {
		log.Info("body despawned", zap.String("body", d.Body), zap.Uint64("tick_id", d.TickID))
	}))
}

func logStats(log *zap.Logger, st sched.Stats) {
	log.Info("session summary",
		zap.Uint64("frames", st.Frames),
		zap.Uint64("ticks", st.TickID),
		zap.Float64("runtime", st.SimulatedRuntime),
		zap.Uint64("discarded_steps", st.DiscardedSteps),
	)
}

// surfaceSize converts a terminal size to the arena grid inside it: the
// border takes two columns and two rows, and the status line and trailing
// newline take two more rows.
func surfaceSize(termCols, termRows int) (cols, rows int) {
	return termCols - 2, termRows - 4
}
