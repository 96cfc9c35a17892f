// Package storage persists die sets and hands back the dice and units they
// hold.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/udice/internal/dice"
)

var (
	// ErrSetNotFound is returned when no set has the requested id.
	ErrSetNotFound = errors.New("die set not found")
	// ErrDieNotFound is returned when a set has no die with the requested name.
	ErrDieNotFound = errors.New("die not found")
	// ErrUnitNotFound is returned when a set uses no unit with the requested name.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrNoDice is returned when storing a set without dice.
	ErrNoDice = errors.New("die set has no dice")
)

// SetID identifies a stored set.
type SetID = uuid.UUID

// SetInfo summarizes a stored set.
type SetInfo struct {
	ID   SetID
	Name string
	Dice int
}

// Repository stores sets of dice. A set's units are every unit its dice use,
// on a face or as an explosion trigger.
//
// Implementations perform no caching of their own beyond what is needed to
// return dice; callers own the returned values.
type Repository interface {
	// Sets lists stored sets in the order they were stored.
	Sets(ctx context.Context) ([]SetInfo, error)
	// AllDice returns the dice of every set, set by set in storage order.
	AllDice(ctx context.Context) ([]*dice.Die, error)
	// SetDice returns the dice of set in the order they were stored.
	SetDice(ctx context.Context, set SetID) ([]*dice.Die, error)
	// Die returns the die named name in set.
	Die(ctx context.Context, set SetID, name string) (*dice.Die, error)
	// AllUnits returns the units of every set.
	AllUnits(ctx context.Context) ([]dice.Unit, error)
	// SetUnits returns the units used by set's dice in first-use order.
	SetUnits(ctx context.Context, set SetID) ([]dice.Unit, error)
	// Unit returns the unit named name used by set's dice.
	Unit(ctx context.Context, set SetID, name string) (dice.Unit, error)
	// StoreDice stores ds as a new set called name and returns its id.
	StoreDice(ctx context.Context, name string, ds []*dice.Die) (SetID, error)
}

// UnitsOf returns every distinct unit used by ds, on a face or as an
// explosion trigger, in first-use order.
func UnitsOf(ds []*dice.Die) []dice.Unit {
	var out []dice.Unit
	add := func(u dice.Unit) {
		if u != nil && !slices.ContainsFunc(out, func(o dice.Unit) bool { return dice.SameUnit(o, u) }) {
			out = append(out, u)
		}
	}
	for _, d := range ds {
		for _, f := range d.Faces() {
			for _, u := range f.Values().Units() {
				add(u)
			}
		}
		add(d.ExplodesOn())
	}
	return out
}

// CheckSet validates the arguments of StoreDice.
//
// Postcondition: Returns nil, an error from dice.NewName, or ErrNoDice.
func CheckSet(name string, ds []*dice.Die) error {
	if _, err := dice.NewName(name); err != nil {
		return fmt.Errorf("set name: %w", err)
	}
	if len(ds) == 0 {
		return fmt.Errorf("set %q: %w", name, ErrNoDice)
	}
	return nil
}

type memorySet struct {
	id    SetID
	name  string
	dice  []*dice.Die
	units []dice.Unit
}

// MemoryRepository is a Repository held in process memory.
//
// MemoryRepository is safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []SetID
	sets  map[SetID]*memorySet
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sets: make(map[SetID]*memorySet)}
}

// Sets implements Repository.
func (r *MemoryRepository) Sets(_ context.Context) ([]SetInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SetInfo, 0, len(r.order))
	for _, id := range r.order {
		s := r.sets[id]
		out = append(out, SetInfo{ID: id, Name: s.name, Dice: len(s.dice)})
	}
	return out, nil
}

// AllDice implements Repository.
func (r *MemoryRepository) AllDice(_ context.Context) ([]*dice.Die, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*dice.Die
	for _, id := range r.order {
		out = append(out, r.sets[id].dice...)
	}
	return out, nil
}

// SetDice implements Repository.
func (r *MemoryRepository) SetDice(_ context.Context, set SetID) ([]*dice.Die, error) {
	s, err := r.get(set)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.dice), nil
}

// Die implements Repository.
func (r *MemoryRepository) Die(_ context.Context, set SetID, name string) (*dice.Die, error) {
	s, err := r.get(set)
	if err != nil {
		return nil, err
	}
	for _, d := range s.dice {
		if d.Name() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("set %s: die %q: %w", set, name, ErrDieNotFound)
}

// AllUnits implements Repository. A unit shared by several sets is listed
// once.
func (r *MemoryRepository) AllUnits(_ context.Context) ([]dice.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*dice.Die
	for _, id := range r.order {
		all = append(all, r.sets[id].dice...)
	}
	return UnitsOf(all), nil
}

// SetUnits implements Repository.
func (r *MemoryRepository) SetUnits(_ context.Context, set SetID) ([]dice.Unit, error) {
	s, err := r.get(set)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.units), nil
}

// Unit implements Repository.
func (r *MemoryRepository) Unit(_ context.Context, set SetID, name string) (dice.Unit, error) {
	s, err := r.get(set)
	if err != nil {
		return nil, err
	}
	for _, u := range s.units {
		if u.Name() == name {
			return u, nil
		}
	}
	return nil, fmt.Errorf("set %s: unit %q: %w", set, name, ErrUnitNotFound)
}

// StoreDice implements Repository.
func (r *MemoryRepository) StoreDice(_ context.Context, name string, ds []*dice.Die) (SetID, error) {
	if err := CheckSet(name, ds); err != nil {
		return uuid.Nil, err
	}
	s := &memorySet{
		id:    uuid.New(),
		name:  name,
		dice:  slices.Clone(ds),
		units: UnitsOf(ds),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[s.id] = s
	r.order = append(r.order, s.id)
	return s.id, nil
}

func (r *MemoryRepository) get(set SetID) (*memorySet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sets[set]
	if !ok {
		return nil, fmt.Errorf("set %s: %w", set, ErrSetNotFound)
	}
	return s, nil
}
