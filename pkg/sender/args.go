package sender

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"
)

// ArgsFromMap converts a plain map to an argument mapping.
// Keys are sorted, a Go map has no iteration order of its own and the
// encoder must produce a deterministic wire form.
func ArgsFromMap(in map[string]any) (out *orderedmap.OrderedMap) {
	out = orderedmap.New()
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.Set(k, in[k])
	}
	return out
}

// StructToArgs converts a struct to an argument mapping, field order
// is preserved. Only defined allowedFields are converted.
// If allowedFields = nil, then all fields are exported.
//
// Field name is read from `writeas` tag or from "json" tag as fallback.
// Field with tag `readonly:"true"` is ignored.
// Field with tag `writeoptional` is exported only if value is not empty.
func StructToArgs(in any, allowedFields []string) (out *orderedmap.OrderedMap) {
	out = orderedmap.New()
	structToArgs(reflect.ValueOf(in), out, allowedFields)
	return out
}

func structToArgs(in reflect.Value, out *orderedmap.OrderedMap, allowedFields []string) {
	// Initialize
	for in.Kind() == reflect.Ptr || in.Kind() == reflect.Interface {
		in = in.Elem()
	}
	t := in.Type()

	// Convert allowed slice to map
	allowed := make(map[string]bool)
	for _, field := range allowedFields {
		allowed[field] = true
	}

	// Iterate over fields
	numFields := t.NumField()
	for i := 0; i < numFields; i++ {
		field := t.Field(i)
		fieldValue := in.Field(i)

		// Process embedded type
		if field.Anonymous {
			structToArgs(fieldValue, out, allowedFields)
			continue
		}

		// Skip field with tag `readonly:"true"`
		if field.Tag.Get("readonly") == "true" {
			continue
		}

		// Skip field with tag `writeoptional:"true"` and empty value
		if field.Tag.Get("writeoptional") == "true" && fieldValue.IsZero() {
			continue
		}

		// Get field name
		var fieldName string
		if v := field.Tag.Get("writeas"); v != "" {
			fieldName = v
		} else if v := strings.Split(field.Tag.Get("json"), ",")[0]; v != "" {
			fieldName = v
		} else {
			panic(fmt.Errorf(`field "%s" of %s has no json name`, field.Name, t.String()))
		}

		// Skip ignored fields
		if fieldName == "-" {
			continue
		}

		// Is allowed?
		if len(allowedFields) > 0 && !allowed[fieldName] {
			continue
		}

		// Ok, add to args
		out.Set(fieldName, fieldValue.Interface())
	}
}
