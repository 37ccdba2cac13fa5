package resolve

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapbuild/pkg/core"
)

// CoerceInt converts a raw value to an int using the rules for integer build
// properties. Integral floats are accepted because JSON and some YAML decoders
// produce float64 for every number. Fractions, booleans and blank strings are
// refused.
func CoerceInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return 0, fmt.Errorf("%d is out of range", v)
		}
		return int(v), nil
	case uint:
		if v > math.MaxInt {
			return 0, fmt.Errorf("%d is out of range", v)
		}
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		if v > math.MaxInt {
			return 0, fmt.Errorf("%d is out of range", v)
		}
		return int(v), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", raw)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int(f), nil
}

// coerceString accepts only strings. Numbers are refused rather than
// formatted because "1.0" and "27.0" would silently lose their trailing zero.
func coerceString(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T %v (quote the value in YAML)", raw, raw)
	}
	return strings.TrimSpace(s), nil
}

func coerceSigning(raw any) (core.SigningProfile, error) {
	s, ok := raw.(string)
	if !ok {
		return core.SigningUnknown, fmt.Errorf("expected a signing profile name, got %T", raw)
	}
	p, ok := core.ParseSigningProfile(s)
	if !ok {
		return core.SigningUnknown, fmt.Errorf("unknown signing profile %q (valid: %s)", s, strings.Join(core.SigningProfiles(), ", "))
	}
	return p, nil
}

// isBlank reports whether a raw value counts as "not set".
func isBlank(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
