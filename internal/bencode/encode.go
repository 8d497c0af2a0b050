package bencode

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
)

// Encoder converts Go values to canonical bencode. The zero value rejects fractional numbers.
type Encoder struct {
	// LegacyFloats truncates fractional numbers toward zero instead of failing, logging a
	// warning the first time it happens on this Encoder.
	LegacyFloats bool
	Logger       *slog.Logger

	warn_once sync.Once
}

// Encode writes v canonically: dictionary keys sorted by byte value, KindNone entries omitted.
// A KindNone v encodes to no bytes at all.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode_value(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal converts v with the strict defaults and encodes it.
func Marshal(v any) ([]byte, error) {
	var e Encoder
	return e.Marshal(v)
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	value, err := e.ToValue(v)
	if err != nil {
		return nil, err
	}
	return Encode(value)
}

func encode_value(buf *bytes.Buffer, v Value) error {
	var scratch [20]byte
	switch v.kind {
	case KindNone:
	case KindBytes:
		buf.Write(strconv.AppendInt(scratch[:0], int64(len(v.bytes)), 10))
		buf.WriteByte(':')
		buf.Write(v.bytes)
	case KindInteger:
		buf.WriteByte('i')
		buf.Write(strconv.AppendInt(scratch[:0], v.integer, 10))
		buf.WriteByte('e')
	case KindList:
		buf.WriteByte('l')
		for _, n := range v.list {
			if err := encode_value(buf, n); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	case KindDict:
		buf.WriteByte('d')
		for _, key := range v.dict.Keys() {
			n := v.dict[key]
			if n.IsNone() {
				continue
			}
			buf.Write(strconv.AppendInt(scratch[:0], int64(len(key)), 10))
			buf.WriteByte(':')
			buf.WriteString(key)
			if err := encode_value(buf, n); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	default:
		return &UnsupportedTypeError{Type: fmt.Sprintf("value kind %d", v.kind)}
	}
	return nil
}

// ToValue maps plain Go data onto the Value model. nil maps to KindNone, bool to 0/1.
func (e *Encoder) ToValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case Dict:
		return Dictionary(t), nil
	case []Value:
		return List(t...), nil
	case string:
		return String(t), nil
	case []byte:
		return Bytes(t), nil
	case bool:
		if t {
			return Int(1), nil
		}
		return Int(0), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return e.from_uint(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return e.from_uint(t)
	case float32:
		return e.from_float(float64(t))
	case float64:
		return e.from_float(t)
	case []string:
		list := make([]Value, len(t))
		for i, s := range t {
			list[i] = String(s)
		}
		return List(list...), nil
	case []any:
		list := make([]Value, 0, len(t))
		for _, n := range t {
			value, err := e.ToValue(n)
			if err != nil {
				return Value{}, err
			}
			list = append(list, value)
		}
		return List(list...), nil
	case map[string]Value:
		return Dictionary(Dict(t)), nil
	case map[string][]byte:
		dict := make(Dict, len(t))
		for k, b := range t {
			dict[k] = Bytes(b)
		}
		return Dictionary(dict), nil
	case map[string]any:
		dict := make(Dict, len(t))
		for k, n := range t {
			value, err := e.ToValue(n)
			if err != nil {
				return Value{}, err
			}
			dict[k] = value
		}
		return Dictionary(dict), nil
	}
	return Value{}, &UnsupportedTypeError{Type: fmt.Sprintf("%T", v)}
}

func (e *Encoder) from_uint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, &UnsupportedTypeError{Type: "uint64 above the int64 range"}
	}
	return Int(int64(u)), nil
}

func (e *Encoder) from_float(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return Value{}, fmt.Errorf("bencode: %v: %w", f, ErrNonIntegerNumber)
	}
	truncated := math.Trunc(f)
	if truncated == f {
		return Int(int64(f)), nil
	}
	if !e.LegacyFloats {
		return Value{}, fmt.Errorf("bencode: %v: %w", f, ErrNonIntegerNumber)
	}

	e.warn_once.Do(func() {
		logger := e.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("possible data corruption: bencode only defines integers, value was truncated",
			"value", f, "encoded", int64(truncated))
	})
	return Int(int64(truncated)), nil
}
