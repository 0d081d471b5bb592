package scripting

import (
	"bytes"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"
)

// ErrNoFunction is returned when a steering function is not defined by any
// loaded script.
var ErrNoFunction = errors.New("lua function not found")

// Script is a compiled chunk, ready to run in an Engine. Compiling is pure
// and safe to do concurrently during preload.
type Script struct {
	Name  string
	proto *lua.FunctionProto
}

// Compile parses and compiles a Lua source file.
func Compile(name string, src []byte) (*Script, error) {
	chunk, err := parse.Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &Script{Name: name, proto: proto}, nil
}

// Engine wraps a single gopher-lua VM running steering scripts.
// Single-goroutine access only (scheduler hooks).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a VM and runs every script in order, so later scripts may
// override functions defined by earlier ones.
func NewEngine(scripts []*Script, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, s := range scripts {
		vm.Push(vm.NewFunctionFromProto(s.proto))
		if err := vm.PCall(0, lua.MultRet, nil); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s: %w", s.Name, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", s.Name))
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// Has reports whether a global function with the given name exists.
func (e *Engine) Has(fn string) bool {
	return e.vm.GetGlobal(fn).Type() == lua.LTFunction
}

// SteerContext is the state handed to a steering function.
type SteerContext struct {
	Body    string
	X, Y    float64
	VX, VY  float64
	Width   float64
	Height  float64
	Step    float64
	Runtime float64
	TickID  uint64
	TTL     float64 // seconds left; only meaningful when HasTTL
	HasTTL  bool
}

// SteerResult is what a steering function asks for.
type SteerResult struct {
	VX, VY  float64
	Despawn bool
}

// Steer calls the Lua function fn with a context table. The function returns
// a table with vx/vy to change velocity, or nil to keep it. Missing fields
// keep their current value; despawn = true removes the body at tick end.
func (e *Engine) Steer(fn string, ctx SteerContext) (SteerResult, error) {
	keep := SteerResult{VX: ctx.VX, VY: ctx.VY}

	f := e.vm.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return keep, fmt.Errorf("%w: %s", ErrNoFunction, fn)
	}

	t := e.vm.NewTable()
	t.RawSetString("name", lua.LString(ctx.Body))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("vx", lua.LNumber(ctx.VX))
	t.RawSetString("vy", lua.LNumber(ctx.VY))
	t.RawSetString("width", lua.LNumber(ctx.Width))
	t.RawSetString("height", lua.LNumber(ctx.Height))
	t.RawSetString("step", lua.LNumber(ctx.Step))
	t.RawSetString("runtime", lua.LNumber(ctx.Runtime))
	t.RawSetString("tick", lua.LNumber(ctx.TickID))
	if ctx.HasTTL {
		t.RawSetString("ttl", lua.LNumber(ctx.TTL))
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return keep, fmt.Errorf("lua %s: %w", fn, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch rt := result.(type) {
	case *lua.LTable:
		return SteerResult{
			VX:      numberOr(rt.RawGetString("vx"), ctx.VX),
			VY:      numberOr(rt.RawGetString("vy"), ctx.VY),
			Despawn: lua.LVAsBool(rt.RawGetString("despawn")),
		}, nil
	case *lua.LNilType:
		return keep, nil
	default:
		return keep, fmt.Errorf("lua %s returned %s, want table or nil", fn, result.Type())
	}
}

func numberOr(v lua.LValue, def float64) float64 {
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}
