package evaluator

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/sandrolain/goformula/pkg/types"
)

// toNumber coerces a runtime value to a float64, mirroring the loose numeric
// coercion of dynamic expression languages: booleans are 1/0, strings parse
// as numbers (empty string is 0), explicit null is 0, absence and structured
// values are NaN. NaN then flows through arithmetic and makes comparisons
// false, matching IEEE semantics.
func toNumber(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		if v == "" {
			return 0
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case types.Null:
		return 0
	default:
		return math.NaN()
	}
}

// stringify renders a runtime value as a string for the + concatenation
// fallback and for error messages. Numbers drop a trailing ".0", null and
// absence render as "null" and "undefined", structured values render as
// their JSON encoding.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case types.Null:
		return "null"
	case nil:
		return "undefined"
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return reflect.TypeOf(v).String()
		}
		return string(encoded)
	}
}

// formatNumber renders a float64 without a decimal part when it is integral.
func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// truthy reduces a runtime value to a boolean: false, zero, NaN, the empty
// string, null and absence are falsy; everything else (including empty
// structured values) is truthy.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	case types.Null:
		return false
	case nil:
		return false
	default:
		return true
	}
}

// strictEquals compares two values without type coercion: values of
// different runtime kinds are never equal. Scalars compare by value; null
// equals only null and absence only absence; structured values compare by
// deep equality.
func strictEquals(left, right interface{}) bool {
	switch l := left.(type) {
	case float64:
		r, ok := right.(float64)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	case types.Null:
		_, ok := right.(types.Null)
		return ok
	case nil:
		return right == nil
	default:
		if right == nil {
			return false
		}
		if _, scalar := right.(float64); scalar {
			return false
		}
		if _, scalar := right.(string); scalar {
			return false
		}
		if _, scalar := right.(bool); scalar {
			return false
		}
		if _, scalar := right.(types.Null); scalar {
			return false
		}
		return reflect.DeepEqual(left, right)
	}
}

// lookupProperty resolves key on a structured host value. The second return
// value reports whether the key exists; a missing key is absence, not an
// error. Supported shapes: map[string]interface{}, slices and arrays
// (numeric index), arbitrary maps and struct fields via reflection.
func lookupProperty(object, key interface{}) (interface{}, bool) {
	switch obj := object.(type) {
	case map[string]interface{}:
		value, ok := obj[propertyName(key)]
		return value, ok
	case []interface{}:
		idx, ok := sliceIndex(key, len(obj))
		if !ok {
			return nil, false
		}
		return obj[idx], true
	}
	return reflectLookup(object, key)
}

// propertyName converts a computed key to its canonical string form, so that
// data[1] and data["1"] address the same entry of a string-keyed map.
func propertyName(key interface{}) string {
	if s, ok := key.(string); ok {
		return s
	}
	return stringify(key)
}

// sliceIndex validates a computed key as an index into a sequence of length n.
// Only non-negative integral in-range numbers resolve.
func sliceIndex(key interface{}, n int) (int, bool) {
	f, ok := key.(float64)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	idx := int(f)
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

// reflectLookup handles host values beyond the common JSON shapes: typed
// maps, typed slices, structs and pointers to structs. Structs resolve
// exported field names only.
func reflectLookup(object, key interface{}) (interface{}, bool) {
	rv := reflect.ValueOf(object)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(propertyName(key)))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true

	case reflect.Slice, reflect.Array:
		idx, ok := sliceIndex(key, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(idx).Interface(), true

	case reflect.Struct:
		fv := rv.FieldByName(propertyName(key))
		if !fv.IsValid() || !fv.CanInterface() {
			return nil, false
		}
		return fv.Interface(), true

	default:
		return nil, false
	}
}
