//go:build !unix

package main

import (
	"github.com/l1jgo/tickframe/internal/game"
	"go.uber.org/zap"
)

// watchResize is a no-op where the terminal does not signal size changes.
func watchResize(*game.Game, *zap.Logger) (stop func()) {
	return func() {}
}
