package reflect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Convert parses a literal property value into t.
func Convert(s string, t reflect.Type) (any, error) {
	if t == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(s).Convert(t).Interface(), nil
	case reflect.Interface:
		if reflect.TypeOf(s).Implements(t) {
			return s, nil
		}
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(b).Convert(t).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, t.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(i).Convert(t).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(strings.TrimSpace(s), 10, t.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(u).Convert(t).Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), t.Bits())
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(f).Convert(t).Interface(), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			out := reflect.MakeSlice(t, 0, 0)
			if strings.TrimSpace(s) == "" {
				return out.Interface(), nil
			}
			for _, part := range strings.Split(s, ",") {
				out = reflect.Append(out, reflect.ValueOf(strings.TrimSpace(part)).Convert(t.Elem()))
			}
			return out.Interface(), nil
		}
	}

	return nil, fmt.Errorf("cannot convert literal %q to %s", s, t)
}

// Zero returns the zero value of t as an interface. For pointer, interface
// and other nilable kinds this is a typed nil.
func Zero(t reflect.Type) any {
	return reflect.Zero(t).Interface()
}
