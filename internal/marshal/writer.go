package marshal

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"vxscripts/internal/rvdata"
)

// Fixnums outside this range are written as bignums, matching Ruby.
const (
	fixnumMax = 1<<30 - 1
	fixnumMin = -(1 << 30)
)

type writer struct {
	buf     bytes.Buffer
	symbols map[string]int
}

// Encode serializes a Value graph as a Marshal 4.8 stream. Symbols are
// link-deduplicated; other objects are written expanded, which Ruby accepts.
func Encode(v rvdata.Value) ([]byte, error) {
	w := &writer{symbols: make(map[string]int)}
	w.buf.WriteByte(majorVersion)
	w.buf.WriteByte(minorVersion)
	if err := w.value(v); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

func (w *writer) long(x int) {
	if x == 0 {
		w.buf.WriteByte(0)
		return
	}
	if 0 < x && x < 123 {
		w.buf.WriteByte(byte(x + 5))
		return
	}
	if -124 < x && x < 0 {
		w.buf.WriteByte(byte(x - 5))
		return
	}
	var tmp [5]byte
	for i := 1; i < 5; i++ {
		tmp[i] = byte(x & 0xff)
		x >>= 8
		if x == 0 {
			tmp[0] = byte(i)
			w.buf.Write(tmp[:i+1])
			return
		}
		if x == -1 {
			tmp[0] = byte(-i)
			w.buf.Write(tmp[:i+1])
			return
		}
	}
	// int values always terminate within four bytes
	tmp[0] = 4
	w.buf.Write(tmp[:5])
}

func (w *writer) symbol(s string) {
	if idx, ok := w.symbols[s]; ok {
		w.buf.WriteByte(';')
		w.long(idx)
		return
	}
	w.symbols[s] = len(w.symbols)
	w.buf.WriteByte(':')
	w.long(len(s))
	w.buf.WriteString(s)
}

func (w *writer) ivars(pairs []rvdata.Pair) error {
	w.long(len(pairs))
	for _, p := range pairs {
		name, ok := p.Key.(rvdata.Sym)
		if !ok {
			return fmt.Errorf("marshal: ivar key %T is not a symbol", p.Key)
		}
		w.symbol(string(name))
		if err := w.value(p.Val); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) value(v rvdata.Value) error {
	switch t := v.(type) {
	case nil, rvdata.Nil:
		w.buf.WriteByte('0')

	case rvdata.Bool:
		if t {
			w.buf.WriteByte('T')
		} else {
			w.buf.WriteByte('F')
		}

	case rvdata.Int:
		if t >= fixnumMin && t <= fixnumMax {
			w.buf.WriteByte('i')
			w.long(int(t))
			return nil
		}
		w.bignum(int64(t))

	case rvdata.Float:
		w.buf.WriteByte('f')
		s := formatRubyFloat(float64(t))
		w.long(len(s))
		w.buf.WriteString(s)

	case rvdata.Sym:
		w.symbol(string(t))

	case *rvdata.Str:
		if len(t.Ivars) > 0 {
			w.buf.WriteByte('I')
		}
		w.buf.WriteByte('"')
		w.long(len(t.Text))
		w.buf.WriteString(t.Text)
		if len(t.Ivars) > 0 {
			return w.ivars(t.Ivars)
		}

	case *rvdata.Array:
		w.buf.WriteByte('[')
		w.long(len(t.Elems))
		for _, el := range t.Elems {
			if err := w.value(el); err != nil {
				return err
			}
		}

	case *rvdata.Hash:
		if t.Default != nil {
			w.buf.WriteByte('}')
		} else {
			w.buf.WriteByte('{')
		}
		w.long(len(t.Pairs))
		for _, p := range t.Pairs {
			if err := w.value(p.Key); err != nil {
				return err
			}
			if err := w.value(p.Val); err != nil {
				return err
			}
		}
		if t.Default != nil {
			return w.value(t.Default)
		}

	case *rvdata.Object:
		w.buf.WriteByte('o')
		w.symbol(t.Class)
		return w.ivars(t.Attrs)

	case *rvdata.UserDef:
		if len(t.Ivars) > 0 {
			w.buf.WriteByte('I')
		}
		w.buf.WriteByte('u')
		w.symbol(t.Class)
		w.long(len(t.Raw))
		w.buf.Write(t.Raw)
		if len(t.Ivars) > 0 {
			return w.ivars(t.Ivars)
		}

	case *rvdata.UserMarshal:
		w.buf.WriteByte('U')
		w.symbol(t.Class)
		return w.value(t.Val)

	case rvdata.ClassRef:
		if t.Module {
			w.buf.WriteByte('m')
		} else {
			w.buf.WriteByte('c')
		}
		w.long(len(t.Name))
		w.buf.WriteString(t.Name)

	default:
		return fmt.Errorf("marshal: cannot encode %T", v)
	}
	return nil
}

func (w *writer) bignum(v int64) {
	w.buf.WriteByte('l')
	if v < 0 {
		w.buf.WriteByte('-')
		v = -v
	} else {
		w.buf.WriteByte('+')
	}
	var mag []byte
	for v > 0 {
		mag = append(mag, byte(v&0xff))
		v >>= 8
	}
	if len(mag)%2 != 0 {
		mag = append(mag, 0)
	}
	w.long(len(mag) / 2)
	w.buf.Write(mag)
}

func formatRubyFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
