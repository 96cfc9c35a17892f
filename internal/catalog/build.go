package catalog

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/cory-johannsen/udice/internal/dice"
	"github.com/cory-johannsen/udice/internal/scripting"
)

var (
	// ErrUnknownUnit is returned when a face or die names an undeclared unit.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrUnknownFace is returned when a die lists an undeclared face key.
	ErrUnknownFace = errors.New("unknown face")
	// ErrDuplicateName is returned when two units or two dice share a name.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrScriptingDisabled is returned for script units when Options carries
	// no scripting.Manager.
	ErrScriptingDisabled = errors.New("script units need a scripting manager")
	// ErrUnknownScript is returned when script_ref names no loaded script.
	ErrUnknownScript = errors.New("unknown script")
	// ErrUnencodableUnit is returned by Encode for unit types it cannot describe.
	ErrUnencodableUnit = errors.New("unit type cannot be encoded")
)

// Options configures how documents become sets.
type Options struct {
	// Scripts compiles script units. Documents without script units may
	// leave it nil.
	Scripts *scripting.Manager
	// ExplosionLimit is used for exploding dice whose document sets no
	// limit. Zero leaves dice.DefaultExplosionLimit in effect.
	ExplosionLimit int
}

// Build turns a validated document into a Set.
//
// Precondition: doc has passed Validate.
// Postcondition: Returns a Set whose dice share face pointers exactly as the
// document's face keys do, or an error naming the first bad reference.
func Build(doc *Document, opts Options) (*Set, error) {
	set := &Set{Name: doc.Set, Description: doc.Description}
	units := make(map[string]dice.Unit, len(doc.Units)+1)
	units[dice.Numeric.Name()] = dice.Numeric

	for _, ud := range doc.Units {
		if _, dup := units[ud.Name]; dup && ud.Kind != KindNumeric {
			return nil, fmt.Errorf("set %q: unit %q: %w", doc.Set, ud.Name, ErrDuplicateName)
		}
		u, err := buildUnit(ud, opts)
		if err != nil {
			return nil, fmt.Errorf("set %q: unit %q: %w", doc.Set, ud.Name, err)
		}
		units[ud.Name] = u
		set.Units = append(set.Units, u)
	}

	faces := make(map[string]*dice.Face, len(doc.Faces))
	for key, fd := range doc.Faces {
		vals := make([]dice.Value, len(fd.Values))
		for i, vd := range fd.Values {
			u, ok := units[vd.Unit]
			if !ok {
				return nil, fmt.Errorf("set %q: face %q: %w %q", doc.Set, key, ErrUnknownUnit, vd.Unit)
			}
			vals[i] = dice.V(u, vd.Amount)
		}
		faces[key] = dice.NewFace(fd.Label, vals...)
	}

	for _, dd := range doc.Dice {
		if _, dup := set.Die(dd.Name); dup {
			return nil, fmt.Errorf("set %q: die %q: %w", doc.Set, dd.Name, ErrDuplicateName)
		}
		slots := make([]*dice.Face, len(dd.Faces))
		for i, key := range dd.Faces {
			f, ok := faces[key]
			if !ok {
				return nil, fmt.Errorf("set %q: die %q: %w %q", doc.Set, dd.Name, ErrUnknownFace, key)
			}
			slots[i] = f
		}
		d, err := dice.NewDie(dd.Name, slots)
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", doc.Set, err)
		}
		if dd.ExplodeOn != "" {
			u, ok := units[dd.ExplodeOn]
			if !ok {
				return nil, fmt.Errorf("set %q: die %q explodes on %w %q", doc.Set, dd.Name, ErrUnknownUnit, dd.ExplodeOn)
			}
			limit := dd.ExplosionLimit
			if limit == 0 {
				limit = opts.ExplosionLimit
			}
			d = d.WithExplosion(u, limit)
		}
		set.Dice = append(set.Dice, d)
	}
	return set, nil
}

func buildUnit(ud UnitDoc, opts Options) (dice.Unit, error) {
	if ud.Kind == KindNumeric {
		return dice.Numeric, nil
	}
	name, err := dice.NewName(ud.Name)
	if err != nil {
		return nil, err
	}
	id := ud.ID
	if id == 0 {
		id = dice.NewUnitID()
	}

	switch ud.Kind {
	case KindBasic:
		return dice.RebuildBasicUnit(id, name, ud.Format, ud.IgnoreZero), nil
	case KindTiered:
		if len(ud.Tiers) == 0 {
			return nil, fmt.Errorf("%w: tiered unit needs at least one tier", ErrInvalidDocument)
		}
		tiers := make([]dice.Tier, len(ud.Tiers))
		for i, td := range ud.Tiers {
			tiers[i] = dice.Tier{Min: math.MinInt32, Max: math.MaxInt32, Format: td.Format}
			if td.Min != nil {
				tiers[i].Min = *td.Min
			}
			if td.Max != nil {
				tiers[i].Max = *td.Max
			}
		}
		return dice.RebuildTieredUnit(id, name, tiers...), nil
	case KindScript:
		if opts.Scripts == nil {
			return nil, ErrScriptingDisabled
		}
		source := ud.Script
		if ud.ScriptRef != "" {
			ref, ok := opts.Scripts.Lookup(ud.ScriptRef)
			if !ok {
				return nil, fmt.Errorf("%w %q", ErrUnknownScript, ud.ScriptRef)
			}
			source = ref.Source()
		}
		return opts.Scripts.Rebuild(id, name, source)
	default:
		return nil, fmt.Errorf("%w: unit kind %q", ErrInvalidDocument, ud.Kind)
	}
}

// Encode describes set as a document. Every unit used by a face or as an
// explode trigger is included even if set.Units omits it. Faces shared by
// pointer are written once.
//
// Postcondition: Build(Encode(set)) yields dice equal to set's, with the
// same unit identities, or Encode returns ErrUnencodableUnit.
func Encode(set *Set) (*Document, error) {
	doc := &Document{
		Set:         set.Name,
		Description: set.Description,
		Faces:       make(map[string]FaceDoc),
	}

	var units []dice.Unit
	addUnit := func(u dice.Unit) {
		if u != nil && !slices.ContainsFunc(units, func(o dice.Unit) bool { return dice.SameUnit(o, u) }) {
			units = append(units, u)
		}
	}
	for _, u := range set.Units {
		addUnit(u)
	}
	for _, d := range set.Dice {
		addUnit(d.ExplodesOn())
		for _, f := range d.Faces() {
			for _, u := range f.Values().Units() {
				addUnit(u)
			}
		}
	}

	for _, u := range units {
		ud, err := encodeUnit(u)
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", set.Name, err)
		}
		doc.Units = append(doc.Units, ud)
	}

	keys := make(map[*dice.Face]string)
	for _, d := range set.Dice {
		dd := DieDoc{Name: d.Name(), ExplosionLimit: d.ExplosionLimit()}
		if u := d.ExplodesOn(); u != nil {
			dd.ExplodeOn = u.Name()
		}
		for _, f := range d.Faces() {
			key, ok := keys[f]
			if !ok {
				key = faceKey(doc.Faces, f.Label())
				keys[f] = key
				doc.Faces[key] = encodeFace(f)
			}
			dd.Faces = append(dd.Faces, key)
		}
		doc.Dice = append(doc.Dice, dd)
	}
	return doc, nil
}

// faceKey derives a key from label, suffixing a counter when the label is
// already taken by a different face.
func faceKey(taken map[string]FaceDoc, label string) string {
	if _, used := taken[label]; !used && label != "" {
		return label
	}
	for i := 2; ; i++ {
		key := label + "#" + strconv.Itoa(i)
		if _, used := taken[key]; !used {
			return key
		}
	}
}

func encodeFace(f *dice.Face) FaceDoc {
	fd := FaceDoc{Label: f.Label()}
	for _, v := range f.Values().Entries() {
		fd.Values = append(fd.Values, ValueDoc{Unit: v.Unit.Name(), Amount: v.Amount})
	}
	return fd
}

func encodeUnit(u dice.Unit) (UnitDoc, error) {
	switch t := u.(type) {
	case *dice.BasicUnit:
		return UnitDoc{ID: t.ID(), Name: t.Name(), Kind: KindBasic, Format: t.OutputFormat(), IgnoreZero: t.IgnoreZero()}, nil
	case *dice.TieredUnit:
		ud := UnitDoc{ID: t.ID(), Name: t.Name(), Kind: KindTiered}
		for _, tier := range t.Tiers() {
			td := TierDoc{Format: tier.Format}
			if tier.Min != math.MinInt32 {
				lo := tier.Min
				td.Min = &lo
			}
			if tier.Max != math.MaxInt32 {
				hi := tier.Max
				td.Max = &hi
			}
			ud.Tiers = append(ud.Tiers, td)
		}
		return ud, nil
	case *scripting.LuaUnit:
		return UnitDoc{ID: t.ID(), Name: t.Name(), Kind: KindScript, Script: t.Source()}, nil
	default:
		if u.ID() == dice.NumericID {
			return UnitDoc{Name: u.Name(), Kind: KindNumeric}, nil
		}
		return UnitDoc{}, fmt.Errorf("%w: %T (%s)", ErrUnencodableUnit, u, u.Name())
	}
}
