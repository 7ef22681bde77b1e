package layering

import "reflect"

// Equal reports whether a and b are structurally equal. Maps compare by key
// set regardless of iteration order, slices compare element by element, a
// []string equals a []any holding the same strings, and numbers compare by
// value across Go numeric types and json.Number so decoded JSON matches typed
// literals. Integers compare exactly and NaN equals NaN.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return isNilish(a) && isNilish(b)
	}

	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		return ok && equalNumbers(an, bn)
	}

	switch left := a.(type) {
	case string:
		right, ok := b.(string)
		return ok && left == right
	case bool:
		right, ok := b.(bool)
		return ok && left == right
	case map[string]any:
		right, ok := asMap(b)
		return ok && equalMaps(left, right)
	case []any, []string:
		leftItems, _ := asSlice(left)
		rightItems, ok := asSlice(b)
		return ok && equalSlices(leftItems, rightItems)
	}

	if right, ok := asMap(a); ok {
		other, ok := asMap(b)
		return ok && equalMaps(right, other)
	}
	if items, ok := asSlice(a); ok {
		other, ok := asSlice(b)
		return ok && equalSlices(items, other)
	}
	return reflect.DeepEqual(a, b)
}

func equalMaps(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for key, left := range a {
		right, ok := b[key]
		if !ok || !Equal(left, right) {
			return false
		}
	}
	return true
}

func equalSlices(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isNilish(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func asMap(value any) (map[string]any, bool) {
	if typed, ok := value.(map[string]any); ok {
		return typed, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asSlice(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		// byte slices are compared as opaque values
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
