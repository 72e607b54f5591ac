package extensions

import (
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
)

// MaskValues returns a copy of values in which every secret argument that
// holds a value is replaced by the redaction marker. The key stays present.
func MaskValues(args map[string]ArgumentSpec, values map[string]interface{}) map[string]interface{} {
	if values == nil {
		return nil
	}
	out := make(map[string]interface{}, len(values))
	for key, v := range values {
		spec, declared := args[key]
		switch {
		case !declared || v == nil:
			out[key] = v
		case spec.IsSecret():
			if s, ok := v.(string); ok && s == "" {
				out[key] = s
			} else {
				out[key] = audit.Redacted
			}
		case spec.Type == ArgumentObject && len(spec.Properties) > 0:
			if m, ok := v.(map[string]interface{}); ok {
				out[key] = MaskValues(spec.Properties, m)
			} else {
				out[key] = v
			}
		default:
			out[key] = v
		}
	}
	return out
}

// MergeValues applies an incoming partial values bag onto the stored one and
// returns the result as a new map. Nil entries and entries still carrying the
// redaction marker are skipped, so a form that round-trips a masked secret
// keeps the stored secret. Object arguments with declared properties are
// merged property by property.
func MergeValues(args map[string]ArgumentSpec, stored, incoming map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(stored)+len(incoming))
	for k, v := range stored {
		out[k] = v
	}
	for k, v := range incoming {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == audit.Redacted {
			continue
		}
		spec := args[k]
		if spec.Type == ArgumentObject && len(spec.Properties) > 0 {
			in, inOK := v.(map[string]interface{})
			prev, prevOK := out[k].(map[string]interface{})
			if inOK && prevOK {
				v = MergeValues(spec.Properties, prev, in)
			}
		}
		out[k] = v
	}
	return out
}

// ConfigurableArguments builds the argument schema end users may override
// per conversation. Each property whose key has a configured value gets that
// value as its default; secret defaults are masked. The input is not modified.
func ConfigurableArguments(args *ArgumentSpec, values map[string]interface{}) *ArgumentSpec {
	if args == nil {
		return nil
	}
	out := *args
	if args.Properties == nil {
		return &out
	}
	out.Properties = make(map[string]ArgumentSpec, len(args.Properties))
	for key, prop := range args.Properties {
		if v, ok := values[key]; ok && v != nil {
			switch prop.Type {
			case ArgumentString, ArgumentNumber, ArgumentBoolean:
				prop.Default = v
			}
		}
		out.Properties[key] = maskArgumentDefault(prop)
	}
	return &out
}

// MaskArguments returns a copy of the schema with secret defaults masked
func MaskArguments(args *ArgumentSpec) *ArgumentSpec {
	if args == nil {
		return nil
	}
	masked := maskArgumentDefault(*args)
	return &masked
}

func maskArgumentDefault(spec ArgumentSpec) ArgumentSpec {
	if spec.IsSecret() && spec.Default != nil {
		spec.Default = audit.Redacted
	}
	if len(spec.Properties) > 0 {
		props := make(map[string]ArgumentSpec, len(spec.Properties))
		for k, p := range spec.Properties {
			props[k] = maskArgumentDefault(p)
		}
		spec.Properties = props
	}
	return spec
}
