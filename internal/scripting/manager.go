package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/udice/internal/dice"
)

// Manager creates script units with a shared instruction limit and logger
// and owns their interpreters.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	units []*LuaUnit
	// retired holds units replaced by Rebuild. Dice built before the
	// replacement still format through them, so they live until Close.
	retired []*LuaUnit
	limit   int
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil; limit >= 0 (0 uses DefaultInstructionLimit).
// Postcondition: Returns a non-nil Manager with no units.
func NewManager(limit int, logger *zap.Logger) *Manager {
	return &Manager{limit: limit, logger: logger}
}

// NewUnit compiles source as a unit named name, with a fresh identity, and
// registers it.
//
// Postcondition: Returns the unit or a compile error.
func (m *Manager) NewUnit(name, source string) (*LuaUnit, error) {
	u, err := NewLuaUnit(name, source, m.limit, m.logger)
	if err != nil {
		return nil, err
	}
	m.register(u)
	return u, nil
}

// Rebuild recreates a persisted unit with its stored identity and registers
// it in place of any unit previously registered with that id. A registered
// unit with the same id, name and source is returned as is. A replaced unit
// stays usable until Close.
func (m *Manager) Rebuild(id uint64, name dice.Name, source string) (*LuaUnit, error) {
	if u, ok := m.Unit(id); ok && u.Name() == name.String() && u.Source() == source {
		return u, nil
	}
	u, err := RebuildLuaUnit(id, name, source, m.limit, m.logger)
	if err != nil {
		return nil, err
	}
	m.register(u)
	return u, nil
}

func (m *Manager) register(u *LuaUnit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, old := range m.units {
		if old.ID() == u.ID() {
			if old != u {
				m.retired = append(m.retired, old)
			}
			m.units[i] = u
			return
		}
	}
	m.units = append(m.units, u)
}

// LoadDir compiles every *.lua file in dir, in lexicographic order, as a
// unit named after the file without its extension.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the loaded units, or the first error encountered.
// Units loaded before the error stay registered.
func (m *Manager) LoadDir(dir string) ([]*LuaUnit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	sort.Strings(luaFiles)

	out := make([]*LuaUnit, 0, len(luaFiles))
	for _, file := range luaFiles {
		path := filepath.Join(dir, file)
		src, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("scripting: reading %q: %w", path, err)
		}
		u, err := m.NewUnit(strings.TrimSuffix(file, ".lua"), string(src))
		if err != nil {
			return out, fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		out = append(out, u)
	}
	m.logger.Info("scripting: loaded unit scripts",
		zap.String("dir", dir),
		zap.Int("count", len(out)),
	)
	return out, nil
}

// Unit returns the unit registered with id.
func (m *Manager) Unit(id uint64) (*LuaUnit, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.units {
		if u.ID() == id {
			return u, true
		}
	}
	return nil, false
}

// Lookup returns the most recently registered unit named name.
func (m *Manager) Lookup(name string) (*LuaUnit, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.units) - 1; i >= 0; i-- {
		if m.units[i].Name() == name {
			return m.units[i], true
		}
	}
	return nil, false
}

// Len returns the number of registered units.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.units)
}

// Close closes every unit the manager created, including replaced ones.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range slices.Concat(m.units, m.retired) {
		u.Close()
	}
	m.units = nil
	m.retired = nil
}
