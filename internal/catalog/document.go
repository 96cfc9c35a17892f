// Package catalog loads and saves die sets described in YAML.
//
// A document declares a set's units, then its faces once each by key, then
// dice as lists of face keys. A face listed several times on one die, or on
// several dice, is one shared *dice.Face after loading.
package catalog

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/udice/internal/dice"
)

// Unit kinds accepted in a document.
const (
	KindNumeric = "numeric"
	KindBasic   = "basic"
	KindTiered  = "tiered"
	KindScript  = "script"
)

// ErrInvalidDocument wraps every structural validation failure.
var ErrInvalidDocument = errors.New("invalid die set document")

// Document is the on-disk form of a die set.
type Document struct {
	Set         string             `yaml:"set" json:"set" validate:"required,dicename"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Units       []UnitDoc          `yaml:"units" json:"units" validate:"dive"`
	Faces       map[string]FaceDoc `yaml:"faces" json:"faces" validate:"required,min=1,dive"`
	Dice        []DieDoc           `yaml:"dice" json:"dice" validate:"required,min=1,dive"`
}

// UnitDoc declares one unit. ID is optional; when set the unit keeps that
// identity, which is how stored sets are reloaded.
type UnitDoc struct {
	ID         uint64    `yaml:"id,omitempty" json:"id,omitempty"`
	Name       string    `yaml:"name" json:"name" validate:"required,dicename"`
	Kind       string    `yaml:"kind" json:"kind" validate:"required,oneof=numeric basic tiered script"`
	Format     string    `yaml:"format,omitempty" json:"format,omitempty" validate:"required_if=Kind basic"`
	IgnoreZero bool      `yaml:"ignore_zero,omitempty" json:"ignore_zero,omitempty"`
	Tiers      []TierDoc `yaml:"tiers,omitempty" json:"tiers,omitempty" validate:"required_if=Kind tiered,dive"`
	Script     string    `yaml:"script,omitempty" json:"script,omitempty"`
	// ScriptRef names a script loaded by the scripting manager (a file in
	// scripting.dir, without ".lua") to use instead of an inline Script.
	ScriptRef string `yaml:"script_ref,omitempty" json:"script_ref,omitempty"`
}

// TierDoc is one range of a tiered unit. A missing bound is open.
type TierDoc struct {
	Min    *int32 `yaml:"min,omitempty" json:"min,omitempty"`
	Max    *int32 `yaml:"max,omitempty" json:"max,omitempty"`
	Format string `yaml:"format" json:"format"`
}

// FaceDoc is one face. Values are kept in order; it decides rendering order.
type FaceDoc struct {
	Label  string     `yaml:"label" json:"label" validate:"required"`
	Values []ValueDoc `yaml:"values" json:"values" validate:"required,min=1,dive"`
}

// ValueDoc is one contribution of a face, naming its unit.
type ValueDoc struct {
	Unit   string `yaml:"unit" json:"unit" validate:"required"`
	Amount int32  `yaml:"amount" json:"amount"`
}

// DieDoc lists a die's faces by key.
type DieDoc struct {
	Name           string   `yaml:"name" json:"name" validate:"required,dicename"`
	Faces          []string `yaml:"faces" json:"faces" validate:"required,min=1,dive,required"`
	ExplodeOn      string   `yaml:"explode_on,omitempty" json:"explode_on,omitempty"`
	ExplosionLimit int      `yaml:"explosion_limit,omitempty" json:"explosion_limit,omitempty" validate:"gte=0"`
}

// validate is the validator instance for documents. Initialized in init()
// with the dicename rule.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("dicename", validateDiceName)
	validate.RegisterStructValidation(validateScriptSource, UnitDoc{})
}

// validateScriptSource requires a script unit to give exactly one of script
// and script_ref, and other kinds to give neither.
func validateScriptSource(sl validator.StructLevel) {
	ud := sl.Current().Interface().(UnitDoc)
	hasScript, hasRef := ud.Script != "", ud.ScriptRef != ""
	switch {
	case ud.Kind == KindScript && hasScript == hasRef:
		sl.ReportError(ud.Script, "Script", "script", "script_xor_ref", "")
	case ud.Kind != KindScript && (hasScript || hasRef):
		sl.ReportError(ud.Script, "Script", "script", "script_kind_only", "")
	}
}

// validateDiceName accepts exactly the strings dice.NewName accepts.
func validateDiceName(fl validator.FieldLevel) bool {
	_, err := dice.NewName(fl.Field().String())
	return err == nil
}

// Validate checks doc's structure: required fields, name limits and unit
// kinds. Cross references (face keys, unit names) are checked by Build.
//
// Postcondition: Returns nil or an error wrapping ErrInvalidDocument.
func (doc *Document) Validate() error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidDocument, doc.Set, err)
	}
	return nil
}

// Decode parses a YAML document, rejecting unknown fields, and validates it.
//
// Postcondition: Returns a valid Document or a parse/validation error.
func Decode(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing die set: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Marshal renders doc as YAML.
func (doc *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding die set %q: %w", doc.Set, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding die set %q: %w", doc.Set, err)
	}
	return buf.Bytes(), nil
}
