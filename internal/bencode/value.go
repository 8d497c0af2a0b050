package bencode

import (
	"bytes"
	"maps"
	"slices"
)

// Code representing a decoded bencoded document. There are only four datatypes, and its all done around individual bytes (text encoding does not apply here)

type Kind uint8

const (
	KindNone Kind = iota // absent, never produced by a successful decode of non-empty input
	KindBytes
	KindInteger
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "byte string"
	case KindInteger:
		return "integer"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	}
	return "none"
}

// Dict maps raw byte-string keys to values. Go strings are not validated as UTF-8, so a key can
// hold any 256-value content, e.g. a 32 byte SHA-256 pieces root.
type Dict map[string]Value

// Value is a tagged variant over the four bencode types. The zero Value is KindNone, which the
// encoder omits from lists and dictionaries.
type Value struct {
	kind    Kind
	bytes   []byte
	integer int64
	list    []Value
	dict    Dict
}

func Bytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBytes, bytes: b}
}

func String(s string) Value {
	return Value{kind: KindBytes, bytes: []byte(s)}
}

func Int(i int64) Value {
	return Value{kind: KindInteger, integer: i}
}

func List(values ...Value) Value {
	if values == nil {
		values = []Value{}
	}
	return Value{kind: KindList, list: values}
}

func Dictionary(d Dict) Value {
	if d == nil {
		d = Dict{}
	}
	return Value{kind: KindDict, dict: d}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNone() bool {
	return v.kind == KindNone
}

// AsBytes returns the raw content of a byte string. The slice may alias the decoded buffer.
func (v Value) AsBytes() ([]byte, bool) {
	return v.bytes, v.kind == KindBytes
}

// AsString is AsBytes as a Go string; no transcoding takes place.
func (v Value) AsString() (string, bool) {
	return string(v.bytes), v.kind == KindBytes
}

func (v Value) AsInt() (int64, bool) {
	return v.integer, v.kind == KindInteger
}

func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

func (v Value) AsDict() (Dict, bool) {
	return v.dict, v.kind == KindDict
}

// Keys returns the dictionary keys in canonical order: unsigned byte-wise ascending, shorter first on a common prefix.
func (d Dict) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Equal reports whether a and b are structurally the same document.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBytes:
		return bytes.Equal(a.bytes, b.bytes)
	case KindInteger:
		return a.integer == b.integer
	case KindList:
		return slices.EqualFunc(a.list, b.list, Equal)
	case KindDict:
		return maps.EqualFunc(a.dict, b.dict, Equal)
	}
	return true
}
