package extensions

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
)

// ValidateValues checks values against the argument schema and returns a
// coerced copy holding only declared arguments. Missing arguments receive
// their default. Every violation is reported in one validation error.
func ValidateValues(args map[string]ArgumentSpec, values map[string]interface{}) (map[string]interface{}, error) {
	var problems []string
	out := validateObject("", args, values, &problems)
	if len(problems) > 0 {
		return nil, apperr.Validation("%s", strings.Join(problems, "; "))
	}
	return out, nil
}

func validateObject(prefix string, args map[string]ArgumentSpec, values map[string]interface{}, problems *[]string) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for _, key := range argumentKeys(args) {
		spec := args[key]
		path := prefix + key

		raw, ok := values[key]
		if !ok || raw == nil || raw == "" {
			if spec.Default != nil {
				out[key] = spec.Default
			} else if spec.Required {
				*problems = append(*problems, fmt.Sprintf("%s is required", spec.label(path)))
			}
			continue
		}

		v, err := coerce(path, spec, raw, problems)
		if err != nil {
			*problems = append(*problems, err.Error())
			continue
		}
		out[key] = v
	}
	return out
}

func coerce(path string, spec ArgumentSpec, raw interface{}, problems *[]string) (interface{}, error) {
	switch spec.Type {
	case ArgumentString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string", spec.label(path))
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, s) {
			return nil, fmt.Errorf("%s must be one of %s", spec.label(path), strings.Join(spec.Enum, ", "))
		}
		return s, nil

	case ArgumentNumber:
		n, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", spec.label(path))
		}
		if spec.Minimum != nil && n < *spec.Minimum {
			return nil, fmt.Errorf("%s must be at least %v", spec.label(path), *spec.Minimum)
		}
		if spec.Maximum != nil && n > *spec.Maximum {
			return nil, fmt.Errorf("%s must be at most %v", spec.label(path), *spec.Maximum)
		}
		return n, nil

	case ArgumentBoolean:
		switch b := raw.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("%s must be a boolean", spec.label(path))

	case ArgumentObject:
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s must be an object", spec.label(path))
		}
		if len(spec.Properties) == 0 {
			return m, nil
		}
		return validateObject(path+".", spec.Properties, m, problems), nil

	case ArgumentArray:
		items, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s must be an array", spec.label(path))
		}
		if spec.Items == nil {
			return items, nil
		}
		out := make([]interface{}, 0, len(items))
		for i, item := range items {
			v, err := coerce(fmt.Sprintf("%s[%d]", path, i), *spec.Items, item, problems)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	return raw, nil
}

func toFloat(raw interface{}) (float64, error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, err
		}
		n = f
	default:
		return 0, fmt.Errorf("unsupported number type %T", raw)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return n, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Decode converts a values bag into a typed struct using its JSON tags
func Decode[T any](values map[string]interface{}) (T, error) {
	var out T
	data, err := json.Marshal(values)
	if err != nil {
		return out, fmt.Errorf("failed to encode values: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode values: %w", err)
	}
	return out, nil
}
