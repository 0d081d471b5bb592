package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l1jgo/tickframe/internal/config"
	"go.uber.org/zap/zapcore"
)

func writeFixture(t *testing.T, tickRate float64) string {
	t.Helper()
	dir := t.TempDir()
	assets := filepath.Join(dir, "assets")
	if err := os.MkdirAll(filepath.Join(assets, "scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(assets, "scene.yaml"): `
name: test
width: 10
height: 10
bodies:
  - name: ball
    x: 9
    y: 5
    vx: 4
  - name: pilot
    x: 2
    y: 2
    script: still
  - name: flash
    x: 5
    y: 5
    ttl: 0.5
`,
		filepath.Join(assets, "scripts", "still.lua"): "function still(b) return { vx = 0, vy = 0 } end\n",
	}
	for name, body := range files {
		if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfgPath := filepath.Join(dir, "tickframe.toml")
	cfg := fmt.Sprintf(`
[scheduler]
tick_rate = %v

[host]
refresh_rate = 50

[game]
assets_dir = %q
progress = false

[logging]
level = "error"
`, tickRate, assets)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestReplaySummary(t *testing.T) {
	cfgPath := writeFixture(t, 25)

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run([]string{"tickframe", "--config", cfgPath, "replay", "--frames", "50"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	// 50 frames at the 20ms refresh period is one second: 25 ticks.
	got := out.String()
	for _, want := range []string{"frames=50", "ticks=25", "runtime=1.000s", "bounces=1", "despawns=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}

func TestReplayRejectsFrames(t *testing.T) {
	cfgPath := writeFixture(t, 25)
	app := newApp()
	app.Writer = &bytes.Buffer{}
	if err := app.Run([]string{"tickframe", "--config", cfgPath, "replay", "--frames", "0"}); err == nil {
		t.Fatal("zero frames accepted")
	}
}

func TestReplayMissingConfig(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"tickframe", "--config", filepath.Join(t.TempDir(), "nope.toml"), "replay"})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	cases := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		for _, format := range []string{"console", "json"} {
			log, err := newLogger(config.LoggingConfig{Level: tc.level, Format: format})
			if err != nil {
				t.Fatalf("%s/%s: %v", tc.level, format, err)
			}
			if !log.Core().Enabled(tc.want) || (tc.want > zapcore.DebugLevel && log.Core().Enabled(tc.want-1)) {
				t.Errorf("%s/%s: wrong level", tc.level, format)
			}
		}
	}
}

func TestSurfaceSize(t *testing.T) {
	cases := []struct {
		cols, rows         int
		wantCols, wantRows int
	}{
		{80, 24, 78, 20},
		{3, 5, 1, 1},
		{2, 4, 0, 0},
	}
	for _, tc := range cases {
		cols, rows := surfaceSize(tc.cols, tc.rows)
		if cols != tc.wantCols || rows != tc.wantRows {
			t.Errorf("surfaceSize(%d, %d) = %d, %d", tc.cols, tc.rows, cols, rows)
		}
	}
}
