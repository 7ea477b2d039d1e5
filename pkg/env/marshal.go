package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MarshalEnv renders a config struct as .env content using its `env` tags.
// Fields still at their zero value fall back to the envDefault tag, so the
// output is a complete template even for a partially configured process.
func MarshalEnv(c any) (string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("env: expected struct, got %s", v.Kind())
	}
	t := v.Type()

	var b strings.Builder
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("env")
		key, _, _ := strings.Cut(tag, ",")
		if key == "" {
			continue
		}

		val := formatValue(v.Field(i))
		if val == "" {
			val = field.Tag.Get("envDefault")
		}
		if val == "" {
			continue
		}

		fmt.Fprintf(&b, "%s=%s\n", key, val)
	}

	return b.String(), nil
}

// formatValue returns the string form of a field value, empty for zero values.
func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Int() == 0 {
			return ""
		}
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Uint() == 0 {
			return ""
		}
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		if v.Float() == 0 {
			return ""
		}
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		if v.Float() == 0 {
			return ""
		}
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		if !v.Bool() {
			return ""
		}
		return "true"
	default:
		if v.IsZero() {
			return ""
		}
		return fmt.Sprintf("%v", v.Interface())
	}
}
