// Package script runs Lua asset description files and exposes their result
// as a records.Source.
package script

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/Faultbox/assetforge/internal/logger"
	"github.com/Faultbox/assetforge/pkg/records"
)

// Session errors.
var (
	ErrSessionClosed  = errors.New("script session is closed")
	ErrNotSingleTable = errors.New("asset files must return a single table")
	ErrNotTable       = errors.New("asset files must return a table")
)

// Session owns one Lua interpreter. Calls are serialized; a build worker
// should own its own Session rather than share one.
type Session struct {
	mu    sync.Mutex
	state *lua.LState
}

// Open creates a session. Standard libraries are not loaded: asset files are data.
func Open() *Session {
	return &Session{
		state: lua.NewState(lua.Options{SkipOpenLibs: true}),
	}
}

// Close releases the interpreter. Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

// Load executes the Lua file at path and returns the table it evaluates to.
func (s *Session) Load(path string) (records.Source, records.Value, error) {
	return s.run(path, func(L *lua.LState) (*lua.LFunction, error) {
		return L.LoadFile(path)
	})
}

// LoadString executes chunk, named name in error messages, and returns the
// table it evaluates to.
func (s *Session) LoadString(name, chunk string) (records.Source, records.Value, error) {
	return s.run(name, func(L *lua.LState) (*lua.LFunction, error) {
		return L.Load(strings.NewReader(chunk), name)
	})
}

func (s *Session) run(name string, load func(*lua.LState) (*lua.LFunction, error)) (records.Source, records.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return nil, nil, ErrSessionClosed
	}
	L := s.state

	top := L.GetTop()
	defer L.SetTop(top)

	fn, err := load(L)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, nil, fmt.Errorf("executing %s: %w", name, err)
	}

	returned := L.GetTop() - top
	if returned != 1 {
		return nil, nil, fmt.Errorf("%w (got %d values)", ErrNotSingleTable, returned)
	}
	table, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return nil, nil, fmt.Errorf("%w (got a %s)", ErrNotTable, L.Get(-1).Type())
	}

	logger.Debug("asset script loaded", zap.String("path", name))
	return Source{session: s}, table, nil
}

// Source reads Lua tables produced by a Session.
type Source struct {
	session *Session
}

// Len returns the border length of table t.
func (src Source) Len(t records.Value) int {
	tbl, ok := t.(*lua.LTable)
	if !ok {
		return 0
	}
	src.session.mu.Lock()
	defer src.session.mu.Unlock()
	return tbl.Len()
}

// Index returns t[i].
func (src Source) Index(t records.Value, i int) records.Value {
	tbl, ok := t.(*lua.LTable)
	if !ok {
		return nil
	}
	src.session.mu.Lock()
	defer src.session.mu.Unlock()
	return fromLua(tbl.RawGetInt(i))
}

// Field returns t[key].
func (src Source) Field(t records.Value, key string) records.Value {
	tbl, ok := t.(*lua.LTable)
	if !ok {
		return nil
	}
	src.session.mu.Lock()
	defer src.session.mu.Unlock()
	return fromLua(tbl.RawGetString(key))
}

// IsTable reports whether v is a Lua table.
func (Source) IsTable(v records.Value) bool {
	_, ok := v.(*lua.LTable)
	return ok
}

// fromLua maps Lua scalars to Go values; tables stay as *lua.LTable.
func fromLua(v lua.LValue) records.Value {
	switch lv := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LNumber:
		return float64(lv)
	case lua.LString:
		return string(lv)
	case lua.LBool:
		return bool(lv)
	default:
		return v
	}
}
