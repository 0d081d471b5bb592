package game

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/l1jgo/tickframe/internal/config"
	"github.com/l1jgo/tickframe/internal/core/event"
	"github.com/l1jgo/tickframe/internal/core/sched"
	"github.com/l1jgo/tickframe/internal/host"
	"github.com/l1jgo/tickframe/internal/scene"
	"github.com/l1jgo/tickframe/internal/scripting"
	"github.com/l1jgo/tickframe/internal/world"
	"github.com/spf13/afero"
	"go.uber.org/zap/zaptest"
)

const testScene = `
name: box
width: 8
height: 4
bodies:
  - name: ball
    x: 7
    y: 2
    vx: 4
    glyph: "@"
    color: "205"
  - name: drone
    x: 1
    y: 1
    script: hover
    glyph: "*"
`

const testScript = `
function hover(b)
  return { vx = 0, vy = 0 }
end
`

func testFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		if err := afero.WriteFile(fs, name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func testConfig() config.GameConfig {
	cfg := config.Default().Game
	cfg.Progress = false
	cfg.Columns = 8
	cfg.Rows = 4
	return cfg
}

func newGame(t *testing.T, fs afero.Fs, out *bytes.Buffer) *Game {
	t.Helper()
	g := New(testConfig(), Options{FS: fs, Out: out, Logger: zaptest.NewLogger(t)})
	t.Cleanup(g.Close)
	return g
}

func TestRunEndToEnd(t *testing.T) {
	fs := testFS(t, map[string]string{
		"assets/scene.yaml":       testScene,
		"assets/scripts/hover.lua": testScript,
		"assets/scripts/notes.txt": "ignored",
	})
	var out bytes.Buffer
	g := newGame(t, fs, &out)

	var bounces []world.Bounce
	first := 0
	g.Bounces.On(event.NewHandler(func(b world.Bounce) { bounces = append(bounces, b) }))
	g.Bounces.Once(event.NewHandler(func(world.Bounce) { first++ }))
	var stats []FrameStats
	g.Stats.On(event.NewHandler(func(s FrameStats) { stats = append(stats, s) }))

	m := host.NewManual(0, 2*time.Millisecond)
	s := sched.New(m, m, sched.WithLogger(zaptest.NewLogger(t)))
	ss, err := s.Run(context.Background(), g, 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i := 0; i < 10; i++ {
		if err := m.Step(50 * time.Millisecond); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}

	if got := ss.Stats().TickID; got != 5 {
		t.Fatalf("ticks = %d, want 5", got)
	}
	if len(stats) != 10 {
		t.Fatalf("stats events = %d, want one per frame", len(stats))
	}
	last := stats[len(stats)-1]
	if last.Frames != 10 || last.TickID != 5 || last.IdleBudget != 2*time.Millisecond {
		t.Fatalf("last stats = %+v", last)
	}
	if last.FPS < 19 || last.FPS > 21 {
		t.Fatalf("fps = %v, want about 20", last.FPS)
	}

	// The ball starts one unit from the right wall moving at 4 units/s.
	if len(bounces) != 1 || bounces[0].Body != "ball" || bounces[0].Wall != world.WallRight {
		t.Fatalf("bounces = %+v", bounces)
	}
	if first != 1 {
		t.Fatalf("once handler fired %d times", first)
	}
	drone, _ := g.World().Body("drone")
	if drone.Pos != (world.Vec2{X: 1, Y: 1}) {
		t.Fatalf("scripted drone moved to %v", drone.Pos)
	}

	rendered := out.String()
	if !strings.Contains(rendered, "@") || !strings.Contains(rendered, "*") {
		t.Fatalf("render output missing glyphs:\n%s", rendered)
	}
	if !strings.Contains(rendered, "tick 5") {
		t.Fatalf("render output missing HUD:\n%s", rendered)
	}
}

func TestPreloadMissingScene(t *testing.T) {
	fs := testFS(t, map[string]string{"assets/scripts/hover.lua": testScript})
	g := newGame(t, fs, &bytes.Buffer{})

	m := host.NewManual(0, 0)
	_, err := sched.New(m, m).Run(context.Background(), g, 60)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
	if f, _ := m.Pending(); f != 0 {
		t.Fatal("frame requested after failed preload")
	}
	if g.World() != nil {
		t.Fatal("world built after failed preload")
	}
}

func TestPreloadBadScript(t *testing.T) {
	fs := testFS(t, map[string]string{
		"assets/scene.yaml":      testScene,
		"assets/scripts/bad.lua": "function (",
	})
	g := newGame(t, fs, &bytes.Buffer{})
	if err := g.Preload(context.Background()); err == nil {
		t.Fatal("syntax error accepted")
	}
}

func TestInitMissingSteeringFunction(t *testing.T) {
	fs := testFS(t, map[string]string{"assets/scene.yaml": testScene})
	g := newGame(t, fs, &bytes.Buffer{})

	m := host.NewManual(0, 0)
	_, err := sched.New(m, m).Run(context.Background(), g, 60)
	if !errors.Is(err, scripting.ErrNoFunction) {
		t.Fatalf("err = %v, want ErrNoFunction", err)
	}
}

func TestResizeRedraws(t *testing.T) {
	fs := testFS(t, map[string]string{
		"assets/scene.yaml":        testScene,
		"assets/scripts/hover.lua": testScript,
	})
	var out bytes.Buffer
	g := newGame(t, fs, &out)
	if err := g.Preload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}

	var seen []Resized
	g.Resizes.On(event.NewHandler(func(r Resized) { seen = append(seen, r) }))
	out.Reset()
	g.Resize(16, 6)

	if cols, rows := g.renderer.Size(); cols != 16 || rows != 6 {
		t.Fatalf("renderer size = %dx%d", cols, rows)
	}
	if out.Len() == 0 {
		t.Fatal("resize did not redraw")
	}
	if len(seen) != 1 || seen[0] != (Resized{Columns: 16, Rows: 6}) {
		t.Fatalf("resize events = %+v", seen)
	}
}

func TestRequestResizeAppliesOnUpdate(t *testing.T) {
	fs := testFS(t, map[string]string{
		"assets/scene.yaml":        testScene,
		"assets/scripts/hover.lua": testScript,
	})
	var out bytes.Buffer
	g := newGame(t, fs, &out)

	var seen []Resized
	g.Resizes.On(event.NewHandler(func(r Resized) { seen = append(seen, r) }))

	m := host.NewManual(0, 0)
	if _, err := sched.New(m, m).Run(context.Background(), g, 10); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		g.RequestResize(30, 12)
		g.RequestResize(40, 10)
		g.RequestResize(0, 5)
		close(done)
	}()
	<-done
	if len(seen) != 0 {
		t.Fatal("resize applied off the host goroutine")
	}

	if err := m.Step(100 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != (Resized{Columns: 40, Rows: 10}) {
		t.Fatalf("resize events = %+v", seen)
	}
	if cols, rows := g.renderer.Size(); cols != 40 || rows != 10 {
		t.Fatalf("renderer size = %dx%d", cols, rows)
	}

	if err := m.Step(100 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 {
		t.Fatal("request applied twice")
	}
}

func TestRendererPlacesGlyphs(t *testing.T) {
	w := world.New(4, 2)
	w.Spawn(sceneBody("a", 0.5, 0.5, "@"))
	w.Spawn(sceneBody("b", 4, 2, "#"))

	out := NewRenderer(4, 2).Draw(w, 0, "hud")
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "@") || strings.Contains(lines[1], "#") {
		t.Fatalf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "#") {
		t.Fatalf("second row = %q (clamped body missing)", lines[2])
	}
	if !strings.Contains(lines[4], "hud") {
		t.Fatalf("hud line = %q", lines[4])
	}
}

func sceneBody(name string, x, y float64, glyph string) scene.BodySpec {
	return scene.BodySpec{Name: name, X: x, Y: y, Glyph: glyph}
}
