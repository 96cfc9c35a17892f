package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxNameLen is the longest name, in characters, NewName accepts.
const MaxNameLen = 35

// ErrNameEmpty is returned for empty or whitespace-only names.
var ErrNameEmpty = errors.New("name must not be empty")

// ErrNameTooLong is returned for names longer than MaxNameLen characters.
var ErrNameTooLong = errors.New("name is too long")

// Name is a validated display name for dice, units and named modifiers.
type Name struct {
	val string
}

// NewName validates s and wraps it.
//
// Postcondition: Returns a Name, or an error wrapping ErrNameEmpty or ErrNameTooLong.
func NewName(s string) (Name, error) {
	if strings.TrimSpace(s) == "" {
		return Name{}, ErrNameEmpty
	}
	if utf8.RuneCountInString(s) > MaxNameLen {
		return Name{}, fmt.Errorf("%w: %q has %d characters, max %d", ErrNameTooLong, s, utf8.RuneCountInString(s), MaxNameLen)
	}
	return Name{val: s}, nil
}

// MustName is NewName for names known to be valid. Panics otherwise.
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic("dice: MustName(" + strconv.Quote(s) + "): " + err.Error())
	}
	return n
}

// NameFromIndex names an unnamed entry by its position.
func NameFromIndex(i int) Name {
	return Name{val: strconv.Itoa(i)}
}

func (n Name) String() string { return n.val }

// IsZero reports whether n is the zero Name (no name given).
func (n Name) IsZero() bool { return n.val == "" }
