package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine/state"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game  *lua.LTable
	defs  []rawDef
	order int
}

func (c *collector) add(kind, id string, tbl *lua.LTable) {
	c.order++
	c.defs = append(c.defs, rawDef{kind: kind, id: id, table: tbl, order: c.order})
}

// Load reads all .lua files from dir, compiles them into content
// definitions, validates references, and returns the immutable Defs. The
// Lua VM is discarded after loading. Validation warnings go to log.
func Load(dir string, log *zap.Logger) (*state.Defs, error) {
	if log == nil {
		log = zap.NewNop()
	}
	defs, warnings, files, err := load(dir, log)
	for _, w := range warnings {
		log.Warn("content warning", zap.String("detail", w))
	}
	if err != nil {
		return nil, err
	}

	log.Info("content loaded",
		zap.String("title", defs.Game.Title),
		zap.Int("files", files),
		zap.Int("items", len(defs.Items)),
		zap.Int("skills", len(defs.Skills)),
		zap.Int("status_effects", len(defs.StatusEffects)),
		zap.Int("plugins", len(defs.Plugins)))
	return defs, nil
}

// Check is Load without logging: it returns the validation warnings
// alongside the defs. On a validation failure the error is a
// *ValidationError carrying both lists.
func Check(dir string) (*state.Defs, []string, error) {
	defs, warnings, _, err := load(dir, zap.NewNop())
	return defs, warnings, err
}

func load(dir string, log *zap.Logger) (*state.Defs, []string, int, error) {
	// Discover .lua files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, nil, 0, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Sort: game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, nil, 0, fmt.Errorf("executing %s: %w", f, err)
		}
		log.Debug("loaded content file", zap.String("file", f))
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("compiling content: %w", err)
	}

	warnings, err := validate(defs)
	if err != nil {
		return nil, warnings, len(luaFiles), err
	}
	return defs, warnings, len(luaFiles), nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the content directory or break
// determinism.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not reseed math.random.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
