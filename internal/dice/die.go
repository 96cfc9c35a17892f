package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultExplosionLimit caps the rerolls of one roll on dice that don't set
// their own limit. Explode counts come from face data; a die whose rerolls keep
// triggering would otherwise never stop.
const DefaultExplosionLimit = 20

// Face is one side of a die. Faces are immutable and may be shared by
// several dice, or by several slots of one die.
type Face struct {
	label  string
	values Values
}

// NewFace creates a face from one or more contributions.
func NewFace(label string, vals ...Value) *Face {
	return &Face{label: label, values: NewValues(vals...)}
}

// BlankFace creates a face labelled "Blank" worth zero of u.
func BlankFace(u Unit) *Face {
	return NewFace("Blank", V(u, 0))
}

func (f *Face) Label() string { return f.label }

func (f *Face) Values() Values { return f.values }

func (f *Face) String() string { return f.label }

// Die is a named, ordered list of faces, optionally exploding on a unit.
//
// Die is a SubRoller: rolling it picks one face uniformly.
type Die struct {
	name      Name
	faces     []*Face
	explodeOn Unit
	limit     int
}

// NewDie creates a die.
//
// Precondition: name must be a valid Name; faces must be non-empty.
// Postcondition: Returns a non-exploding die, or a name error or ErrNoFaces.
func NewDie(name string, faces []*Face) (*Die, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, fmt.Errorf("die name: %w", err)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("die %q: %w", name, ErrNoFaces)
	}
	return &Die{name: n, faces: append([]*Face(nil), faces...)}, nil
}

// MustDie is NewDie for dice known to be valid. Panics otherwise.
func MustDie(name string, faces ...*Face) *Die {
	d, err := NewDie(name, faces)
	if err != nil {
		panic("dice: MustDie: " + err.Error())
	}
	return d
}

// NumericDie builds the ordinary "dN" die: faces labelled 1..sides worth
// that many of Numeric.
//
// Precondition: sides >= 1.
func NumericDie(sides int) *Die {
	if sides < 1 {
		panic("dice: NumericDie called with sides < 1")
	}
	faces := make([]*Face, sides)
	for i := range faces {
		faces[i] = NewFace(strconv.Itoa(i+1), V(Numeric, int32(i+1)))
	}
	return MustDie("d"+strconv.Itoa(sides), faces...)
}

// WithExplosion returns a copy of d that explodes on trigger: a rolled face
// carrying N of trigger rolls the die N more times. limit bounds the total
// number of rerolls in one roll, however the chain branches; limit <= 0
// selects DefaultExplosionLimit.
func (d *Die) WithExplosion(trigger Unit, limit int) *Die {
	if limit <= 0 {
		limit = DefaultExplosionLimit
	}
	cp := *d
	cp.explodeOn = trigger
	cp.limit = limit
	return &cp
}

func (d *Die) Name() string { return d.name.String() }

// Faces returns the die's faces in order.
func (d *Die) Faces() []*Face { return append([]*Face(nil), d.faces...) }

// ExplodesOn returns the explode trigger unit, or nil.
func (d *Die) ExplodesOn() Unit { return d.explodeOn }

// ExplosionLimit returns the maximum number of rerolls per roll, or 0 for a
// non-exploding die.
func (d *Die) ExplosionLimit() int { return d.limit }

func (d *Die) String() string { return d.name.String() }

// RollFace picks one face uniformly.
//
// Precondition: d has at least one face. Panics otherwise.
func (d *Die) RollFace(rng Rng) *Face {
	if len(d.faces) == 0 {
		panic("dice: RollFace called on die " + strconv.Quote(d.name.String()) + " with no faces")
	}
	return d.faces[rng.NextIndex(len(d.faces))]
}

func (d *Die) Description() string { return d.name.String() }

func (d *Die) IsSimple() bool { return true }

func (d *Die) IsDie() bool { return true }

func (d *Die) RollWith(rng Rng) Roll { return d.InnerRollWith(rng) }

// InnerRollWith returns a *DieRoll, or an *ExplodedRoll when the face
// triggers the die's explosion.
func (d *Die) InnerRollWith(rng Rng) SubRoll {
	budget := d.limit
	return d.rollExploding(rng, &budget)
}

// rollExploding rolls d once. Rerolls triggered anywhere in the chain are
// paid for out of *budget; once it reaches 0 nothing explodes further.
func (d *Die) rollExploding(rng Rng, budget *int) SubRoll {
	trigger := &DieRoll{die: d, face: d.RollFace(rng)}
	if d.explodeOn == nil || *budget <= 0 {
		return trigger
	}
	n, ok := trigger.face.values.Get(d.explodeOn)
	if !ok || n <= 0 {
		return trigger
	}
	k := min(int(n), *budget)
	*budget -= k
	rerolls := make([]SubRoll, k)
	for i := range rerolls {
		rerolls[i] = d.rollExploding(rng, budget)
	}
	return &ExplodedRoll{trigger: trigger, rerolls: rerolls}
}

// DieRoll is the face one die landed on.
type DieRoll struct {
	die  *Die
	face *Face
}

// Die returns the die that was rolled.
func (r *DieRoll) Die() *Die { return r.die }

// Face returns the face that came up.
func (r *DieRoll) Face() *Face { return r.face }

// IntermediateResults renders "<die>:[<face>]", e.g. "d6:[4]".
func (r *DieRoll) IntermediateResults() string {
	return r.die.name.String() + ":[" + r.face.label + "]"
}

func (r *DieRoll) FinalResult() string { return r.Totals().String() }

func (r *DieRoll) IsSimple() bool { return true }

func (r *DieRoll) RolledFaces() []*DieRoll { return []*DieRoll{r} }

func (r *DieRoll) Totals() Values { return r.face.values }

func (r *DieRoll) String() string { return r.IntermediateResults() }

// ExplodedRoll is a die roll whose face triggered extra rolls of the same die.
type ExplodedRoll struct {
	trigger *DieRoll
	rerolls []SubRoll
}

// Trigger returns the roll that caused the explosion.
func (r *ExplodedRoll) Trigger() *DieRoll { return r.trigger }

// Rerolls returns the triggered rolls in order. Each may itself be exploded.
func (r *ExplodedRoll) Rerolls() []SubRoll { return append([]SubRoll(nil), r.rerolls...) }

// IntermediateResults renders "d6:[6] => (exploded: d6:[2])", or
// "... => (exploded 2 times: d6:[1], d6:[3])" for several rerolls.
func (r *ExplodedRoll) IntermediateResults() string {
	parts := make([]string, len(r.rerolls))
	for i, rr := range r.rerolls {
		parts[i] = InnerResults(rr)
	}
	if len(parts) == 1 {
		return r.trigger.IntermediateResults() + " => (exploded: " + parts[0] + ")"
	}
	return fmt.Sprintf("%s => (exploded %d times: %s)",
		r.trigger.IntermediateResults(), len(parts), strings.Join(parts, ", "))
}

func (r *ExplodedRoll) FinalResult() string { return r.Totals().String() }

func (r *ExplodedRoll) IsSimple() bool { return false }

func (r *ExplodedRoll) RolledFaces() []*DieRoll {
	return append([]*DieRoll{r.trigger}, facesOf(r.rerolls)...)
}

func (r *ExplodedRoll) Totals() Values {
	out := r.trigger.Totals()
	for _, rr := range r.rerolls {
		out = out.AddAll(rr.Totals())
	}
	return out
}
