package plugin

import "fmt"

// FieldSchema describes validation for one config option key.
type FieldSchema struct {
	Type     string // "string", "int", "float", "bool"; empty skips type checking
	Required bool
	Default  interface{}
	Enum     []string
	Range    *[2]float64 // inclusive [min, max], for numeric types
	Validate func(value interface{}) error
}

// ConfigSchema maps option key to its FieldSchema.
type ConfigSchema map[string]FieldSchema

// ValidateOptions validates options against schema, filling in defaults
// for missing optional keys, and returns the effective option set. Extra
// keys in options that aren't in schema pass through untouched.
func ValidateOptions(pluginName string, schema ConfigSchema, options map[string]interface{}) (map[string]interface{}, error) {
	effective := make(map[string]interface{}, len(options))
	for k, v := range options {
		effective[k] = v
	}

	for key, field := range schema {
		v, present := effective[key]
		if !present {
			if field.Required {
				return nil, fmt.Errorf("plugin %q: missing required config key %q", pluginName, key)
			}
			if field.Default != nil {
				effective[key] = field.Default
			}
			continue
		}
		if err := validateField(pluginName, key, field, v); err != nil {
			return nil, err
		}
	}
	return effective, nil
}

func validateField(pluginName, key string, field FieldSchema, v interface{}) error {
	if field.Type != "" && !matchesType(field.Type, v) {
		return fmt.Errorf("plugin %q: config key %q must be type %s", pluginName, key, field.Type)
	}
	if len(field.Enum) > 0 {
		s, ok := v.(string)
		if !ok || !contains(field.Enum, s) {
			return fmt.Errorf("plugin %q: config key %q must be one of %v", pluginName, key, field.Enum)
		}
	}
	if field.Range != nil {
		n, ok := numeric(v)
		if !ok || n < field.Range[0] || n > field.Range[1] {
			return fmt.Errorf("plugin %q: config key %q must be in range [%v, %v]", pluginName, key, field.Range[0], field.Range[1])
		}
	}
	if field.Validate != nil {
		if err := field.Validate(v); err != nil {
			return fmt.Errorf("plugin %q: config key %q: %w", pluginName, key, err)
		}
	}
	return nil
}

func matchesType(typ string, v interface{}) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "bool":
		_, ok := v.(bool)
		return ok
	case "int":
		switch v.(type) {
		case int, int64:
			return true
		}
		return false
	case "float":
		_, ok := numeric(v)
		return ok
	default:
		return true
	}
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
