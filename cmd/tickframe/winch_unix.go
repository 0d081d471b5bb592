//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/l1jgo/tickframe/internal/game"
	"go.uber.org/zap"
)

// watchResize forwards the terminal size to g now and on every SIGWINCH
// until stop is called. Does nothing when stdout is not a terminal.
func watchResize(g *game.Game, log *zap.Logger) (stop func()) {
	fd := os.Stdout.Fd()
	if !term.IsTerminal(fd) {
		return func() {}
	}

	apply := func() {
		w, h, err := term.GetSize(fd)
		if err != nil {
			log.Debug("read terminal size", zap.Error(err))
			return
		}
		cols, rows := surfaceSize(w, h)
		g.RequestResize(cols, rows)
	}
	apply()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGWINCH)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sig:
				apply()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}
