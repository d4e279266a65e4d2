package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for track tuning hooks.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from scriptsDir and
// its track/ subdirectory. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "track")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasFunction reports whether a global Lua function named name exists.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// WeightContext describes a connector candidate about to be weighed.
type WeightContext struct {
	Type       string
	StartWidth string
	EndWidth   string
	Weight     int // catalog spawn weight
	Index      int // position of the connector in the track
}

// ConnectorWeight calls connector_weight(ctx). Returns ctx.Weight when the
// hook is missing, fails or yields NaN. Results are clamped to the int32 range
// before conversion.
func (e *Engine) ConnectorWeight(ctx WeightContext) int {
	t := e.vm.NewTable()
	t.RawSetString("type", lua.LString(ctx.Type))
	t.RawSetString("start_width", lua.LString(ctx.StartWidth))
	t.RawSetString("end_width", lua.LString(ctx.EndWidth))
	t.RawSetString("weight", lua.LNumber(ctx.Weight))
	t.RawSetString("index", lua.LNumber(ctx.Index))

	v, ok := e.callNumber("connector_weight", t)
	if !ok || math.IsNaN(v) {
		return ctx.Weight
	}
	return int(max(min(v, math.MaxInt32), math.MinInt32))
}

// LengthContext describes a segment whose target length is being chosen.
type LengthContext struct {
	Index  int
	Width  string
	Length float64 // configured target length
}

// SegmentLength calls segment_length(ctx). Returns ctx.Length when the hook is
// missing, fails or yields a non-positive or non-finite value.
func (e *Engine) SegmentLength(ctx LengthContext) float64 {
	t := e.vm.NewTable()
	t.RawSetString("index", lua.LNumber(ctx.Index))
	t.RawSetString("width", lua.LString(ctx.Width))
	t.RawSetString("length", lua.LNumber(ctx.Length))

	v, ok := e.callNumber("segment_length", t)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ctx.Length
	}
	return v
}

// callNumber calls a global function with one table argument and reads a
// numeric result.
func (e *Engine) callNumber(name string, arg *lua.LTable) (float64, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return 0, false
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Warn("lua function returned non-number",
			zap.String("func", name),
			zap.String("type", result.Type().String()),
		)
		return 0, false
	}
	return float64(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
