package layering

import (
	"encoding/json"
	"math"
	"strconv"
)

type numberKind int

const (
	signedNumber numberKind = iota
	unsignedNumber
	floatNumber
)

// number holds a numeric leaf in its widest exact Go representation.
type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func asNumber(value any) (number, bool) {
	switch typed := value.(type) {
	case int:
		return number{kind: signedNumber, i: int64(typed)}, true
	case int8:
		return number{kind: signedNumber, i: int64(typed)}, true
	case int16:
		return number{kind: signedNumber, i: int64(typed)}, true
	case int32:
		return number{kind: signedNumber, i: int64(typed)}, true
	case int64:
		return number{kind: signedNumber, i: typed}, true
	case uint:
		return number{kind: unsignedNumber, u: uint64(typed)}, true
	case uint8:
		return number{kind: unsignedNumber, u: uint64(typed)}, true
	case uint16:
		return number{kind: unsignedNumber, u: uint64(typed)}, true
	case uint32:
		return number{kind: unsignedNumber, u: uint64(typed)}, true
	case uint64:
		return number{kind: unsignedNumber, u: typed}, true
	case float32:
		return number{kind: floatNumber, f: float64(typed)}, true
	case float64:
		return number{kind: floatNumber, f: typed}, true
	case json.Number:
		return parseNumber(string(typed))
	default:
		return number{}, false
	}
}

func parseNumber(text string) (number, bool) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return number{kind: signedNumber, i: i}, true
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return number{kind: unsignedNumber, u: u}, true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return number{kind: floatNumber, f: f}, true
	}
	return number{}, false
}

// equalNumbers compares integers exactly and only falls back to float64 when
// one side is a float. Two NaN values are equal.
func equalNumbers(a, b number) bool {
	if a.kind == floatNumber || b.kind == floatNumber {
		if a.kind != floatNumber {
			a, b = b, a
		}
		switch b.kind {
		case floatNumber:
			return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
		case signedNumber:
			return floatEqualsSigned(a.f, b.i)
		default:
			return floatEqualsUnsigned(a.f, b.u)
		}
	}

	switch {
	case a.kind == signedNumber && b.kind == signedNumber:
		return a.i == b.i
	case a.kind == unsignedNumber && b.kind == unsignedNumber:
		return a.u == b.u
	case a.kind == signedNumber:
		return a.i >= 0 && uint64(a.i) == b.u
	default:
		return b.i >= 0 && uint64(b.i) == a.u
	}
}

// 2^63 and 2^64 are exact in float64; integral floats inside those bounds
// convert to integers without loss.
const (
	twoTo63 = float64(1 << 63)
	twoTo64 = twoTo63 * 2
)

func floatEqualsSigned(f float64, i int64) bool {
	if f != math.Trunc(f) || f < -twoTo63 || f >= twoTo63 {
		return false
	}
	return int64(f) == i
}

func floatEqualsUnsigned(f float64, u uint64) bool {
	if f != math.Trunc(f) || f < 0 || f >= twoTo64 {
		return false
	}
	return uint64(f) == u
}

// NativeNumbers replaces every json.Number inside value with int64 when the
// literal is a signed integer, uint64 when it only fits unsigned, and float64
// otherwise. Maps and []any are rewritten in place.
func NativeNumbers(value any) any {
	switch typed := value.(type) {
	case json.Number:
		n, ok := parseNumber(string(typed))
		if !ok {
			return typed
		}
		switch n.kind {
		case signedNumber:
			return n.i
		case unsignedNumber:
			return n.u
		default:
			return n.f
		}
	case map[string]any:
		for key, item := range typed {
			typed[key] = NativeNumbers(item)
		}
		return typed
	case []any:
		for i, item := range typed {
			typed[i] = NativeNumbers(item)
		}
		return typed
	default:
		return value
	}
}
