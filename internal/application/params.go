package application

import "encoding/json"

// Arguments is a validated tool-argument bag. Accessors assume the
// dispatcher has already validated the bag against the tool's ArgSpec list,
// so a present value always has the declared type.
type Arguments map[string]any

// String returns a string argument, or the empty string when absent.
func (a Arguments) String(name string) string {
	value, _ := a[name].(string)
	return value
}

// StringOr returns a string argument, or fallback when absent or empty.
func (a Arguments) StringOr(name, fallback string) string {
	if value, ok := a[name].(string); ok && value != "" {
		return value
	}
	return fallback
}

// Int returns an integer argument, or fallback when absent.
// JSON decoding yields float64 for numbers; both forms are accepted.
func (a Arguments) Int(name string, fallback int) int {
	switch value := a[name].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}

// Object returns an object argument, or nil when absent.
func (a Arguments) Object(name string) map[string]any {
	value, _ := a[name].(map[string]any)
	return value
}

// renderJSON serializes a normalized projection as the indented JSON text
// payload that the search/list tools return.
func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
