package reflect

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	InjectTag = "inject"
	ValueTag  = "value"
)

type FieldKind int

const (
	FieldInject FieldKind = iota
	FieldValue
)

// Field is an injection point discovered from a struct tag.
type Field struct {
	Name     string
	Index    int
	Type     reflect.Type
	Kind     FieldKind
	Named    string
	Key      string
	Default  string
	HasDef   bool
	Optional bool
}

// TaggedFields lists the `inject` and `value` tagged fields of t, which must
// be a struct or a pointer to one. Other types have no fields.
func TaggedFields(t reflect.Type) ([]Field, error) {
	if t == nil {
		return nil, nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil
	}

	var fields []Field
	for i := range t.NumField() {
		sf := t.Field(i)

		injectTag, hasInject := sf.Tag.Lookup(InjectTag)
		valueTag, hasValue := sf.Tag.Lookup(ValueTag)
		if !hasInject && !hasValue {
			continue
		}
		if hasInject && hasValue {
			return nil, fmt.Errorf("field %s has both %q and %q tags", sf.Name, InjectTag, ValueTag)
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("cannot inject unexported field %s", sf.Name)
		}

		f := Field{Name: sf.Name, Index: i, Type: sf.Type}
		if hasInject {
			f.Kind = FieldInject
			f.Named, f.Optional = parseInjectTag(injectTag)
		} else {
			f.Kind = FieldValue
			f.Key, f.Default, f.HasDef, f.Optional = parseValueTag(valueTag)
		}
		fields = append(fields, f)
	}

	return fields, nil
}

func parseInjectTag(tag string) (name string, optional bool) {
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "optional" {
			optional = true
		}
	}
	return name, optional
}

// parseValueTag reads "key", "key:default" and either form with a trailing
// ",optional". The default may itself contain commas.
func parseValueTag(tag string) (key, def string, hasDef, optional bool) {
	if rest, ok := strings.CutSuffix(tag, ",optional"); ok {
		tag = rest
		optional = true
	}
	key, def, hasDef = strings.Cut(tag, ":")
	return strings.TrimSpace(key), def, hasDef, optional
}

// SetField assigns v to the field at index on the struct pointed to by target.
func SetField(target any, f Field, v any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("field injection requires a non-nil struct pointer, got %T", target)
	}

	fv := rv.Elem().Field(f.Index)
	if !fv.CanSet() {
		return fmt.Errorf("cannot set field %s", f.Name)
	}

	val := ValueFor(v, fv.Type())
	if !val.Type().AssignableTo(fv.Type()) {
		return fmt.Errorf("cannot assign %s to field %s of type %s", val.Type(), f.Name, fv.Type())
	}
	fv.Set(val)
	return nil
}
