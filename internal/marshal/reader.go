// Package marshal reads and writes Ruby Marshal 4.8 streams, the on-disk
// format of .rvdata2 files. It covers the subset the engine emits: scalars,
// symbols, strings with instance variables, arrays, hashes, plain objects,
// user-defined dumps (kept opaque) and object links. It implements
// rvdata.Codec.
package marshal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"vxscripts/internal/rvdata"
)

const (
	majorVersion = 4
	minorVersion = 8
)

type reader struct {
	data    []byte
	pos     int
	symbols []string
	objects []rvdata.Value
}

// Decode parses a Marshal 4.8 stream into a Value graph.
func Decode(data []byte) (rvdata.Value, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("marshal: stream too short")
	}
	if data[0] != majorVersion || data[1] != minorVersion {
		return nil, fmt.Errorf("marshal: unsupported version %d.%d", data[0], data[1])
	}
	r := &reader{data: data, pos: 2}
	v, err := r.value()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *reader) byte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("marshal: unexpected end of stream at %d", r.pos)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("marshal: truncated stream at %d (want %d bytes)", r.pos, n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// long reads the packed integer format used for lengths, counts and fixnums.
func (r *reader) long() (int, error) {
	b, err := r.byte()
	if err != nil {
		return 0, err
	}
	c := int(int8(b))
	if c == 0 {
		return 0, nil
	}
	if c > 0 {
		if 4 < c && c < 128 {
			return c - 5, nil
		}
		x := 0
		for i := 0; i < c; i++ {
			b, err := r.byte()
			if err != nil {
				return 0, err
			}
			x |= int(b) << (8 * i)
		}
		return x, nil
	}
	if -129 < c && c < -4 {
		return c + 5, nil
	}
	c = -c
	x := -1
	for i := 0; i < c; i++ {
		b, err := r.byte()
		if err != nil {
			return 0, err
		}
		x &^= 0xff << (8 * i)
		x |= int(b) << (8 * i)
	}
	return x, nil
}

func (r *reader) register(v rvdata.Value) rvdata.Value {
	r.objects = append(r.objects, v)
	return v
}

// symbol reads a symbol object, which must be either a new symbol or a
// symlink into the symbol table.
func (r *reader) symbol() (string, error) {
	tag, err := r.byte()
	if err != nil {
		return "", err
	}
	switch tag {
	case ':':
		n, err := r.long()
		if err != nil {
			return "", err
		}
		raw, err := r.bytes(n)
		if err != nil {
			return "", err
		}
		s := string(raw)
		r.symbols = append(r.symbols, s)
		return s, nil
	case ';':
		idx, err := r.long()
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(r.symbols) {
			return "", fmt.Errorf("marshal: symbol link %d out of range", idx)
		}
		return r.symbols[idx], nil
	default:
		return "", fmt.Errorf("marshal: expected symbol, got tag %q", tag)
	}
}

// ivars reads a count-prefixed list of (symbol, value) pairs.
func (r *reader) ivars() ([]rvdata.Pair, error) {
	n, err := r.long()
	if err != nil {
		return nil, err
	}
	pairs := make([]rvdata.Pair, 0, n)
	for i := 0; i < n; i++ {
		name, err := r.symbol()
		if err != nil {
			return nil, err
		}
		val, err := r.value()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, rvdata.Pair{Key: rvdata.Sym(name), Val: val})
	}
	return pairs, nil
}

func (r *reader) value() (rvdata.Value, error) {
	tag, err := r.byte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case '0':
		return rvdata.Nil{}, nil
	case 'T':
		return rvdata.Bool(true), nil
	case 'F':
		return rvdata.Bool(false), nil

	case 'i':
		n, err := r.long()
		if err != nil {
			return nil, err
		}
		return rvdata.Int(n), nil

	case ':', ';':
		r.pos-- // symbol() re-reads the tag
		s, err := r.symbol()
		if err != nil {
			return nil, err
		}
		return rvdata.Sym(s), nil

	case '"':
		n, err := r.long()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(n)
		if err != nil {
			return nil, err
		}
		return r.register(&rvdata.Str{Text: string(raw)}), nil

	case 'I':
		inner, err := r.value()
		if err != nil {
			return nil, err
		}
		pairs, err := r.ivars()
		if err != nil {
			return nil, err
		}
		switch t := inner.(type) {
		case *rvdata.Str:
			t.Ivars = pairs
		case *rvdata.UserDef:
			t.Ivars = pairs
		}
		return inner, nil

	case '[':
		n, err := r.long()
		if err != nil {
			return nil, err
		}
		arr := &rvdata.Array{Elems: make([]rvdata.Value, 0, n)}
		r.register(arr)
		for i := 0; i < n; i++ {
			el, err := r.value()
			if err != nil {
				return nil, err
			}
			arr.Elems = append(arr.Elems, el)
		}
		return arr, nil

	case '{', '}':
		n, err := r.long()
		if err != nil {
			return nil, err
		}
		h := &rvdata.Hash{Pairs: make([]rvdata.Pair, 0, n)}
		r.register(h)
		for i := 0; i < n; i++ {
			k, err := r.value()
			if err != nil {
				return nil, err
			}
			v, err := r.value()
			if err != nil {
				return nil, err
			}
			h.Pairs = append(h.Pairs, rvdata.Pair{Key: k, Val: v})
		}
		if tag == '}' {
			def, err := r.value()
			if err != nil {
				return nil, err
			}
			h.Default = def
		}
		return h, nil

	case 'o':
		class, err := r.symbol()
		if err != nil {
			return nil, err
		}
		obj := &rvdata.Object{Class: class}
		r.register(obj)
		attrs, err := r.ivars()
		if err != nil {
			return nil, err
		}
		obj.Attrs = attrs
		return obj, nil

	case 'f':
		n, err := r.long()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(n)
		if err != nil {
			return nil, err
		}
		f, err := parseRubyFloat(string(raw))
		if err != nil {
			return nil, err
		}
		return r.register(rvdata.Float(f)), nil

	case 'l':
		sign, err := r.byte()
		if err != nil {
			return nil, err
		}
		n, err := r.long()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(n * 2)
		if err != nil {
			return nil, err
		}
		var mag uint64
		for i := len(raw) - 1; i >= 0; i-- {
			mag = mag<<8 | uint64(raw[i])
		}
		v := int64(mag)
		if sign == '-' {
			v = -v
		}
		return r.register(rvdata.Int(v)), nil

	case 'u':
		class, err := r.symbol()
		if err != nil {
			return nil, err
		}
		n, err := r.long()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(n)
		if err != nil {
			return nil, err
		}
		data := make([]byte, n)
		copy(data, raw)
		return r.register(&rvdata.UserDef{Class: class, Raw: data}), nil

	case 'U':
		class, err := r.symbol()
		if err != nil {
			return nil, err
		}
		um := &rvdata.UserMarshal{Class: class}
		r.register(um)
		val, err := r.value()
		if err != nil {
			return nil, err
		}
		um.Val = val
		return um, nil

	case 'c', 'm':
		n, err := r.long()
		if err != nil {
			return nil, err
		}
		raw, err := r.bytes(n)
		if err != nil {
			return nil, err
		}
		return r.register(rvdata.ClassRef{Module: tag == 'm', Name: string(raw)}), nil

	case '@':
		idx, err := r.long()
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(r.objects) {
			return nil, fmt.Errorf("marshal: object link %d out of range", idx)
		}
		return r.objects[idx], nil

	case 'e':
		// Extended object: module symbol then the object itself.
		if _, err := r.symbol(); err != nil {
			return nil, err
		}
		return r.value()

	case 'C':
		// Subclass of a built-in: class symbol then the wrapped value. The
		// subclass name is dropped; the engine never relies on it.
		if _, err := r.symbol(); err != nil {
			return nil, err
		}
		return r.value()

	default:
		return nil, fmt.Errorf("marshal: unsupported tag %q at %d", tag, r.pos-1)
	}
}

func parseRubyFloat(s string) (float64, error) {
	switch s {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	}
	// Old Ruby emitters may append a locale suffix after a NUL.
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("marshal: bad float %q: %w", s, err)
	}
	return f, nil
}
