package reflect

import (
	"reflect"
	"strconv"
	"sync"
)

var typeKeyCache sync.Map

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func TypeKey[T any]() string {
	return KeyOf(TypeOf[T]())
}

func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func KeyOf(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if cached, ok := typeKeyCache.Load(t); ok {
		return cached.(string)
	}

	key := buildTypeKey(t)
	typeKeyCache.Store(t, key)
	return key
}

func buildTypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeKey(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeKey(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeKey(t.Key()) + "]" + buildTypeKey(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeKey(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeKey(t.Elem())
		default:
			return "chan " + buildTypeKey(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		if t.Name() == "" {
			return t.String()
		}
		return t.Name()
	}
}

func KeyFromValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return KeyOf(reflect.TypeOf(v))
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Same reports whether a and b are the same value: equal when the type is
// comparable, the same backing pointer for maps, slices and funcs.
func Same(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return va.Comparable() && vb.Comparable() && va.Equal(vb)
}

func TypeName[T any]() string {
	return TypeOf[T]().String()
}

func IsInterface(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Interface
}

// Assignable reports whether a value of type from can be stored in to.
func Assignable(from, to reflect.Type) bool {
	if from == nil || to == nil {
		return false
	}
	if to.Kind() == reflect.Interface {
		return from.Implements(to)
	}
	return from.AssignableTo(to)
}

// ValueFor returns v as a reflect.Value of type t. A nil v yields the zero
// value of t.
func ValueFor(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != t && rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t)
	}
	return rv
}
