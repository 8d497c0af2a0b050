package bencode

import (
	"bytes"
	"log/slog"
	"math"
)

// DefaultMaxDepth bounds list/dictionary nesting when Decoder.MaxDepth is unset.
const DefaultMaxDepth = 1024

// Decoder holds the options for a decode. The zero value is strict.
type Decoder struct {
	// LegacyIntegers tolerates a leading '+', leading zeros and a fractional part in integers
	// (i12.3e decodes to 12), as emitted by some historical producers.
	LegacyIntegers bool
	// AllowTrailing ignores any bytes after the top-level value.
	AllowTrailing bool
	MaxDepth      int
	// Logger receives a warning for every legacy integer whose fraction was dropped. Defaults to slog.Default().
	Logger *slog.Logger
}

// Decode parses data with the strict defaults. Empty input decodes to the KindNone value with no error.
func Decode(data []byte) (Value, error) {
	var d Decoder
	return d.Decode(data)
}

func (d Decoder) Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, nil
	}

	max_depth := d.MaxDepth
	if max_depth <= 0 {
		max_depth = DefaultMaxDepth
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	state := decode_state{data: data, legacy: d.LegacyIntegers, max_depth: max_depth, logger: logger}

	value, err := state.decode_value(0)
	if err != nil {
		return Value{}, err
	}
	if state.pos != len(data) && !d.AllowTrailing {
		return Value{}, state.fail(ErrTrailingData)
	}
	return value, nil
}

type decode_state struct {
	data      []byte
	pos       int
	legacy    bool
	max_depth int
	logger    *slog.Logger
}

func (s *decode_state) fail(err error) error {
	return &SyntaxError{Err: err, Offset: s.pos}
}

func (s *decode_state) fail_at(err error, offset int) error {
	return &SyntaxError{Err: err, Offset: offset}
}

func (s *decode_state) decode_value(depth int) (Value, error) {
	switch c := s.data[s.pos]; {
	case c == 'i':
		return s.parse_int()
	case c == 'l':
		return s.parse_list(depth)
	case c == 'd':
		return s.parse_dict(depth)
	case is_digit(c):
		b, err := s.parse_bytes()
		if err != nil {
			return Value{}, err
		}
		return Bytes(b), nil
	}
	return Value{}, s.fail(ErrInvalidToken)
}

func (s *decode_state) parse_list(depth int) (Value, error) {
	if depth >= s.max_depth {
		return Value{}, s.fail(ErrTooDeep)
	}
	s.pos++

	result := []Value{}
	for {
		if s.pos >= len(s.data) {
			return Value{}, s.fail(ErrUnterminatedContainer)
		}
		if s.data[s.pos] == 'e' {
			s.pos++
			return List(result...), nil
		}
		n, err := s.decode_value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		result = append(result, n)
	}
}

// duplicate keys are not rejected, the last occurrence wins
func (s *decode_state) parse_dict(depth int) (Value, error) {
	if depth >= s.max_depth {
		return Value{}, s.fail(ErrTooDeep)
	}
	s.pos++

	result := Dict{}
	for {
		if s.pos >= len(s.data) {
			return Value{}, s.fail(ErrUnterminatedContainer)
		}
		if s.data[s.pos] == 'e' {
			s.pos++
			return Dictionary(result), nil
		}
		if !is_digit(s.data[s.pos]) {
			return Value{}, s.fail(ErrInvalidKey)
		}
		key, err := s.parse_bytes()
		if err != nil {
			return Value{}, err
		}

		if s.pos >= len(s.data) {
			return Value{}, s.fail(ErrUnterminatedContainer)
		}
		if s.data[s.pos] == 'e' {
			return Value{}, s.fail(ErrMissingValue)
		}
		n, err := s.decode_value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		result[string(key)] = n
	}
}

func (s *decode_state) parse_int() (Value, error) {
	s.pos++ // 'i'
	end := bytes.IndexByte(s.data[s.pos:], 'e')
	if end < 0 {
		return Value{}, s.fail_at(ErrMalformedInteger, len(s.data))
	}

	body := s.data[s.pos : s.pos+end]
	value, bad := parse_decimal(body, s.legacy)
	if bad >= 0 {
		return Value{}, s.fail_at(ErrMalformedInteger, s.pos+bad)
	}
	if s.legacy && bytes.IndexByte(body, '.') >= 0 {
		s.logger.Warn("bencode integer has a fractional part, value was truncated",
			"offset", s.pos-1, "input", string(body), "value", value)
	}
	s.pos += end + 1
	return Int(value), nil
}

// parse_decimal returns the value of an integer body and -1, or the index of the first offending byte.
func parse_decimal(digits []byte, legacy bool) (int64, int) {
	i := 0
	negative := false
	if i < len(digits) && digits[i] == '-' {
		negative = true
		i++
	} else if legacy && i < len(digits) && digits[i] == '+' {
		i++
	}

	limit := uint64(math.MaxInt64)
	if negative {
		limit++
	}

	s := i
	var magnitude uint64
	for ; i < len(digits); i++ {
		c := digits[i]
		if c == '.' && legacy && i > s {
			break
		}
		if !is_digit(c) {
			return 0, i
		}
		d := uint64(c - '0')
		if magnitude > (limit-d)/10 {
			return 0, i
		}
		magnitude = magnitude*10 + d
	}

	if i == s {
		return 0, s // no number specified
	}
	if !legacy {
		if digits[s] == '0' && i != s+1 {
			return 0, s // cannot start with 0
		}
		if negative && magnitude == 0 {
			return 0, s // cannot be negative 0
		}
	}

	// legacy fraction, truncated toward zero
	for j := i + 1; j < len(digits); j++ {
		if !is_digit(digits[j]) {
			return 0, j
		}
	}

	if negative {
		return -int64(magnitude), -1
	}
	return int64(magnitude), -1
}

// parse_bytes reads <length>:<content>. The result aliases the input buffer.
func (s *decode_state) parse_bytes() ([]byte, error) {
	start := s.pos

	i := start
	length := 0
	for ; i < len(s.data) && is_digit(s.data[i]); i++ {
		if length <= len(s.data) { // past the buffer size the exact value no longer matters
			length = length*10 + int(s.data[i]-'0')
		}
	}

	if i >= len(s.data) || s.data[i] != ':' {
		return nil, s.fail_at(ErrMissingDelimiter, i)
	}
	if s.data[start] == '0' && i != start+1 && !s.legacy {
		return nil, s.fail_at(ErrMalformedLength, start)
	}

	content := i + 1
	if length > len(s.data)-content {
		return nil, s.fail_at(ErrTruncatedString, start)
	}
	s.pos = content + length
	return s.data[content:s.pos:s.pos], nil
}

func is_digit(c byte) bool {
	return c >= '0' && c <= '9'
}
