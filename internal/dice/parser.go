package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression represents a parsed dice expression ready to be built into a
// roller.
//
// Exactly one of Sides and DieName is set: "2d6" is numeric, "3dFate"
// names a die the caller resolves.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per numeric die
	DieName  string // named die, resolved at Build time
	Modifier int    // flat modifier (may be negative)
	Keep     Strategy
}

// Limits on the numbers an expression may carry. Larger pools and dice would
// allocate without bound when rolled.
const (
	MaxDiceCount = 1000
	MaxDieSides  = 1000
)

var exprPattern = regexp.MustCompile(
	`^(\d*)[dD](\d+|[A-Za-z][A-Za-z0-9_]*?(?:/[A-Za-z][A-Za-z0-9_]*?)?)(?:((?i:kh|kl|dh|dl))(\d+))?([+-]\d+)?$`)

// Parse parses a dice expression string into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "4d6kh3", "4d6kl1",
// "4d6dl1", "4d6dh1" and named dice such as "3dFate" or "2dWarhammer/Challenge".
// Whitespace is ignored.
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns an Expression or an error wrapping ErrInvalidExpression.
func Parse(expr string) (Expression, error) {
	raw := expr
	s := strings.Join(strings.Fields(expr), "")
	if s == "" {
		return Expression{}, fmt.Errorf("dice: %w: empty expression", ErrInvalidExpression)
	}

	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: %w %q", ErrInvalidExpression, raw)
	}

	out := Expression{Raw: raw, Count: 1, Keep: KeepAll()}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n > MaxDiceCount {
			return Expression{}, fmt.Errorf("dice: %w %q: die count must be in [1, %d]",
				ErrInvalidExpression, raw, MaxDiceCount)
		}
		out.Count = n
	}

	if isDigits(m[2]) {
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 1 || sides > MaxDieSides {
			return Expression{}, fmt.Errorf("dice: %w %q: die sides must be in [1, %d]",
				ErrInvalidExpression, raw, MaxDieSides)
		}
		out.Sides = sides
	} else {
		out.DieName = m[2]
	}

	if m[3] != "" {
		n, err := strconv.Atoi(m[4])
		if err != nil || n <= 0 || n >= out.Count {
			return Expression{}, fmt.Errorf("dice: %w %q: %s value must be > 0 and < count %d",
				ErrInvalidExpression, raw, strings.ToLower(m[3]), out.Count)
		}
		switch strings.ToLower(m[3]) {
		case "kh":
			out.Keep = DropLowest(out.Count-n, Numeric)
		case "kl":
			out.Keep = DropHighest(out.Count-n, Numeric)
		case "dl":
			out.Keep = DropLowest(n, Numeric)
		case "dh":
			out.Keep = DropHighest(n, Numeric)
		}
	}

	if m[5] != "" {
		mod, err := strconv.ParseInt(m[5], 10, 32)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: %w %q: modifier: %v", ErrInvalidExpression, raw, err)
		}
		out.Modifier = int(mod)
	}
	return out, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// DieResolver looks up a named die. The second result is false when the
// name is unknown.
type DieResolver func(name string) (*Die, bool)

// Build turns e into a roller. Numeric dice come from NumericDie; named dice
// come from resolve, which may be nil when e is numeric.
//
// Precondition: e must come from Parse.
// Postcondition: Returns a roller, or an error wrapping ErrUnknownDie.
func (e Expression) Build(resolve DieResolver) (SubRoller, error) {
	var die *Die
	if e.DieName == "" {
		die = NumericDie(e.Sides)
	} else {
		var ok bool
		if resolve != nil {
			die, ok = resolve(e.DieName)
		}
		if !ok {
			return nil, fmt.Errorf("dice: %w %q", ErrUnknownDie, e.DieName)
		}
	}

	var out SubRoller = die
	if e.Count > 1 {
		pool, err := NewPool(die, e.Count, e.Keep)
		if err != nil {
			return nil, fmt.Errorf("dice: building %q: %w", e.Raw, err)
		}
		out = pool
	}
	if e.Modifier != 0 {
		out = NewModifier(out, V(Numeric, int32(e.Modifier)))
	}
	return out, nil
}

// MustParse parses and builds a numeric expression. Panics on error; meant
// for literals in tests and fixtures.
func MustParse(expr string) SubRoller {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	r, err := e.Build(nil)
	if err != nil {
		panic(err)
	}
	return r
}
