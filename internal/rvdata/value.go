// Package rvdata models the deserialized form of RPG Maker VX Ace data
// files: a generic class-name + ordered-attribute object graph. No record
// type gets a dedicated struct; the same accessors serve maps, events and
// every database table.
package rvdata

import (
	"sort"
	"strconv"
)

// Value is the closed union of everything a Marshal-style object graph can
// hold. Scalars are value types; containers are pointers so mutation through
// the graph is visible everywhere.
type Value interface{ value() }

type Nil struct{}

type Bool bool

type Int int64

type Float float64

// Sym is a Ruby symbol (attribute names, hash keys).
type Sym string

// Pair is one ordered key/value slot of a Hash, or one ivar of an Object.
type Pair struct {
	Key Value
	Val Value
}

// Str carries text plus whatever instance variables the source file attached
// (typically the :E encoding flag). Ivars are preserved so a rewritten file
// keeps the original string encoding metadata.
type Str struct {
	Text  string
	Ivars []Pair
}

type Array struct {
	Elems []Value
}

// Hash is an ordered key→value map. Default is non-nil only when the source
// hash carried a default value.
type Hash struct {
	Pairs   []Pair
	Default Value
}

// Object is a generic instance: class name plus ordered instance variables.
// Attribute keys are stored with their leading "@".
type Object struct {
	Class string
	Attrs []Pair
}

// UserDef is a class serialized via _dump (e.g. Table, Color, Tone). The
// payload is opaque and round-trips byte-for-byte.
type UserDef struct {
	Class string
	Raw   []byte
	Ivars []Pair
}

// UserMarshal is a class serialized via marshal_dump.
type UserMarshal struct {
	Class string
	Val   Value
}

// ClassRef is a serialized reference to a class or module.
type ClassRef struct {
	Module bool
	Name   string
}

func (Nil) value()          {}
func (Bool) value()         {}
func (Int) value()          {}
func (Float) value()        {}
func (Sym) value()          {}
func (*Str) value()         {}
func (*Array) value()       {}
func (*Hash) value()        {}
func (*Object) value()      {}
func (*UserDef) value()     {}
func (*UserMarshal) value() {}
func (ClassRef) value()     {}

// NewStr builds a UTF-8 string value with the :E encoding ivar set, matching
// what the engine writes for its own strings.
func NewStr(text string) *Str {
	return &Str{Text: text, Ivars: []Pair{{Key: Sym("E"), Val: Bool(true)}}}
}

func ivarName(name string) string {
	if len(name) > 0 && name[0] == '@' {
		return name
	}
	return "@" + name
}

// Get returns the named attribute, or def when absent.
func (o *Object) Get(name string, def Value) Value {
	want := ivarName(name)
	for _, p := range o.Attrs {
		if s, ok := p.Key.(Sym); ok && string(s) == want {
			return p.Val
		}
	}
	return def
}

// Set replaces the named attribute in place, appending it when absent.
func (o *Object) Set(name string, val Value) {
	want := ivarName(name)
	for i, p := range o.Attrs {
		if s, ok := p.Key.(Sym); ok && string(s) == want {
			o.Attrs[i].Val = val
			return
		}
	}
	o.Attrs = append(o.Attrs, Pair{Key: Sym(want), Val: val})
}

// GetAttr is the tolerant form of attribute access: any non-Object value,
// including nil, yields def.
func GetAttr(v Value, name string, def Value) Value {
	obj, ok := v.(*Object)
	if !ok || obj == nil {
		return def
	}
	return obj.Get(name, def)
}

// SetAttr sets an attribute when v is an Object and reports whether it did.
func SetAttr(v Value, name string, val Value) bool {
	obj, ok := v.(*Object)
	if !ok || obj == nil {
		return false
	}
	obj.Set(name, val)
	return true
}

// AsString renders a value as text the way the source data is loosely typed:
// strings and symbols verbatim, numbers formatted, nil empty.
func AsString(v Value) string {
	switch t := v.(type) {
	case *Str:
		return t.Text
	case Sym:
		return string(t)
	case Int:
		return strconv.FormatInt(int64(t), 10)
	case Float:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case Bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// AsInt converts numeric values to int, returning def for anything else.
func AsInt(v Value, def int) int {
	switch t := v.(type) {
	case Int:
		return int(t)
	case Float:
		return int(t)
	default:
		return def
	}
}

// StrLike builds a string value carrying text, cloning the ivars of template
// when template is itself a string. Replacement text stays indistinguishable
// from engine-authored strings.
func StrLike(text string, template Value) Value {
	if ts, ok := template.(*Str); ok && ts != nil {
		ivars := make([]Pair, len(ts.Ivars))
		copy(ivars, ts.Ivars)
		return &Str{Text: text, Ivars: ivars}
	}
	return NewStr(text)
}

func sameScalar(a, b Value) bool {
	switch ka := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		kb, ok := b.(Bool)
		return ok && ka == kb
	case Int:
		kb, ok := b.(Int)
		return ok && ka == kb
	case Float:
		kb, ok := b.(Float)
		return ok && ka == kb
	case Sym:
		kb, ok := b.(Sym)
		return ok && ka == kb
	case *Str:
		kb, ok := b.(*Str)
		return ok && kb != nil && ka != nil && ka.Text == kb.Text
	default:
		return false
	}
}

// Get looks a key up by scalar equality.
func (h *Hash) Get(key Value) (Value, bool) {
	for _, p := range h.Pairs {
		if sameScalar(p.Key, key) {
			return p.Val, true
		}
	}
	return nil, false
}

// Set replaces the value for key, appending the pair when absent.
func (h *Hash) Set(key, val Value) {
	for i, p := range h.Pairs {
		if sameScalar(p.Key, key) {
			h.Pairs[i].Val = val
			return
		}
	}
	h.Pairs = append(h.Pairs, Pair{Key: key, Val: val})
}

// SortedIntKeys returns the positive integer keys in ascending order. Non-int
// keys are ignored; map/event ids are always positive ints.
func (h *Hash) SortedIntKeys() []int {
	var keys []int
	for _, p := range h.Pairs {
		if k, ok := p.Key.(Int); ok && k > 0 {
			keys = append(keys, int(k))
		}
	}
	sort.Ints(keys)
	return keys
}

// Event command codes recognized by the scanner.
const (
	CodeShowText   = 101 // message display setup (face, position)
	CodeShowChoice = 102 // show choices, parameters[0] is the choice list
	CodeComment    = 108 // comment; carries encoded original-text markers
	CodeTextLine   = 401 // one line of message text
)

// CommandFields reads the code/indent/parameters triple of an event command,
// degrading to zero values when the command is malformed.
func CommandFields(cmd Value) (code, indent int, params []Value) {
	code = AsInt(GetAttr(cmd, "code", Int(0)), 0)
	indent = AsInt(GetAttr(cmd, "indent", Int(0)), 0)
	if arr, ok := GetAttr(cmd, "parameters", nil).(*Array); ok && arr != nil {
		params = arr.Elems
	}
	return code, indent, params
}

// NewEventCommand builds an RPG::EventCommand object.
func NewEventCommand(code, indent int, params []Value) *Object {
	return &Object{
		Class: "RPG::EventCommand",
		Attrs: []Pair{
			{Key: Sym("@code"), Val: Int(code)},
			{Key: Sym("@indent"), Val: Int(indent)},
			{Key: Sym("@parameters"), Val: &Array{Elems: params}},
		},
	}
}
