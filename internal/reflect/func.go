package reflect

import (
	"fmt"
	"reflect"
)

// Func describes a producer or setter function: its parameter types and the
// single value it produces, optionally followed by an error.
type Func struct {
	fn       reflect.Value
	In       []reflect.Type
	Out      reflect.Type
	HasError bool
}

func FuncOf(fn any) (*Func, error) {
	if fn == nil {
		return nil, fmt.Errorf("function is nil")
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function, got %s", t)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic functions are not supported: %s", t)
	}

	f := &Func{fn: v, In: make([]reflect.Type, t.NumIn())}
	for i := range t.NumIn() {
		f.In[i] = t.In(i)
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			f.HasError = true
		} else {
			f.Out = t.Out(0)
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("second return value of %s must be error", t)
		}
		f.Out = t.Out(0)
		f.HasError = true
	default:
		return nil, fmt.Errorf("too many return values: %s", t)
	}

	return f, nil
}

func (f *Func) String() string {
	return f.fn.Type().String()
}

// Call invokes the function. A panic inside the function is returned as an
// error so a misbehaving producer cannot take the container down.
func (f *Func) Call(args []any) (result any, err error) {
	if len(args) != len(f.In) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", f, len(f.In), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = ValueFor(a, f.In[i])
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", f, r)
		}
	}()

	out := f.fn.Call(in)

	if f.HasError {
		last := out[len(out)-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}
	if f.Out == nil {
		return nil, nil
	}
	return out[0].Interface(), nil
}
