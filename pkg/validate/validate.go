// Package validate checks request structs against `validate` tags.
//
// Rules are comma separated and run left to right; the first failure is the
// field's message.
//
//	required    not zero; whitespace-only strings count as empty
//	nullable    skip the remaining rules when the field is empty
//	email       looks like an email address
//	uuid        canonical UUID text
//	min=N       string length or numeric value at least N
//	max=N       string length or numeric value at most N
//	gt=N        number greater than N
//	gte=N       number at least N
//	lte=N       number at most N
//	in=a|b|c    one of the listed values
//	same=json   equal to the sibling field with that json name
//	dive        validate a nested struct, or each element of a slice
//
// Numbers include decimal.Decimal. Nested failures use dotted keys such as
// "items.0.quantity".
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Struct validates v and returns json field name to message. The map is
// empty when v is valid.
func Struct(v interface{}) map[string]string {
	errs := map[string]string{}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() == reflect.Struct {
		walk(rv, "", errs)
	}
	return errs
}

func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

var (
	emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	uuidRE  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// Email reports whether s looks like an email address.
func Email(s string) bool { return emailRE.MatchString(strings.TrimSpace(s)) }

// field is what a rule sees.
type field struct {
	name   string
	value  reflect.Value
	parent reflect.Value
	param  string
}

func (f field) text() string { return strings.TrimSpace(stringOf(f.value)) }

type rule func(f field) string

var rules = map[string]rule{
	"required": func(f field) string {
		if isEmpty(f.value) {
			return fmt.Sprintf("The %s field is required.", f.name)
		}
		return ""
	},
	"email": func(f field) string {
		if !Email(f.text()) {
			return fmt.Sprintf("The %s must be a valid email address.", f.name)
		}
		return ""
	},
	"uuid": func(f field) string {
		if !uuidRE.MatchString(f.text()) {
			return fmt.Sprintf("The %s must be a valid UUID.", f.name)
		}
		return ""
	},
	"min": func(f field) string {
		n := parseNum(f.param)
		if isNumeric(f.value) {
			if toFloat(f.value) < n {
				return fmt.Sprintf("The %s must be at least %s.", f.name, f.param)
			}
		} else if float64(len([]rune(f.text()))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", f.name, f.param)
		}
		return ""
	},
	"max": func(f field) string {
		n := parseNum(f.param)
		if isNumeric(f.value) {
			if toFloat(f.value) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", f.name, f.param)
			}
		} else if float64(len([]rune(f.text()))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", f.name, f.param)
		}
		return ""
	},
	"gt": func(f field) string {
		if toFloat(f.value) <= parseNum(f.param) {
			return fmt.Sprintf("The %s must be greater than %s.", f.name, f.param)
		}
		return ""
	},
	"gte": func(f field) string {
		if toFloat(f.value) < parseNum(f.param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", f.name, f.param)
		}
		return ""
	},
	"lte": func(f field) string {
		if toFloat(f.value) > parseNum(f.param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", f.name, f.param)
		}
		return ""
	},
	"in": func(f field) string {
		for _, opt := range strings.Split(f.param, "|") {
			if f.text() == strings.TrimSpace(opt) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", f.name)
	},
	"same": func(f field) string {
		other, ok := sibling(f.parent, f.param)
		if !ok || stringOf(other) != stringOf(f.value) {
			return fmt.Sprintf("The %s and %s must match.", f.name, f.param)
		}
		return ""
	},
}

func walk(rv reflect.Value, prefix string, errs map[string]string) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}

		name := jsonName(sf)
		val := rv.Field(i)
		diveInto, failed := false, false

		for _, raw := range strings.Split(tag, ",") {
			key, param, _ := strings.Cut(strings.TrimSpace(raw), "=")
			switch key {
			case "nullable":
				if isEmpty(val) {
					failed = true // nothing else to check
				}
			case "dive":
				diveInto = true
				continue
			default:
				fn, ok := rules[key]
				if !ok {
					panic(fmt.Sprintf("validate: unknown rule %q on %s", key, sf.Name))
				}
				if msg := fn(field{name: name, value: val, parent: rv, param: param}); msg != "" {
					errs[prefix+name] = msg
					failed = true
				}
			}
			if failed {
				break
			}
		}

		if diveInto && !failed {
			dive(val, prefix+name, errs)
		}
	}
}

func dive(v reflect.Value, key string, errs map[string]string) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			dive(v.Elem(), key, errs)
		}
	case reflect.Struct:
		walk(v, key+".", errs)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			dive(v.Index(i), key+"."+strconv.Itoa(i), errs)
		}
	}
}

// floater is satisfied by decimal.Decimal.
type floater interface{ InexactFloat64() float64 }

func stringOf(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	return fmt.Sprint(v.Interface())
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	if isNumeric(v) {
		return toFloat(v) == 0
	}
	return false
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	_, ok := v.Interface().(floater)
	return ok
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	if f, ok := v.Interface().(floater); ok {
		return f.InexactFloat64()
	}
	return 0
}

func parseNum(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(sf.Name)
	}
	return name
}

func sibling(parent reflect.Value, name string) (reflect.Value, bool) {
	rt := parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonName(rt.Field(i)) == name {
			return parent.Field(i), true
		}
	}
	return reflect.Value{}, false
}
