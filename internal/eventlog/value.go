package eventlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// maxDepth bounds how far ValueOf walks nested values.
const maxDepth = 8

// Value is a loggable value: Null, Primitive, Fields, List or Func.
type Value interface {
	writeTo(b *strings.Builder)
}

// Null is an absent value.
type Null struct{}

// Primitive is a string, number or boolean, held in its JSON form.
type Primitive struct {
	text string
}

// Field is one named entry of a Fields value.
type Field struct {
	Name  string
	Value Value
}

// Fields is an ordered set of named values.
type Fields []Field

// List is an ordered sequence of values.
type List []Value

// Func is a callable, rendered by name.
type Func struct {
	Name string
}

// String returns a string primitive.
func String(s string) Primitive {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return Primitive{text: strconv.Quote(s)}
	}
	return Primitive{text: strings.TrimSuffix(buf.String(), "\n")}
}

// Int returns an integer primitive.
func Int(n int64) Primitive { return Primitive{text: strconv.FormatInt(n, 10)} }

// Uint returns an unsigned integer primitive.
func Uint(n uint64) Primitive { return Primitive{text: strconv.FormatUint(n, 10)} }

// Float returns a number primitive. Non-finite values render as null.
func Float(f float64) Primitive {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Primitive{text: "null"}
	}
	return Primitive{text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Bool returns a boolean primitive.
func Bool(v bool) Primitive { return Primitive{text: strconv.FormatBool(v)} }

func (Null) writeTo(b *strings.Builder) { b.WriteString("null") }

func (p Primitive) writeTo(b *strings.Builder) { b.WriteString(p.text) }

func (f Fields) writeTo(b *strings.Builder) {
	b.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(field.Name)
		b.WriteString(": ")
		writeValue(b, field.Value)
	}
	b.WriteByte('}')
}

func (l List) writeTo(b *strings.Builder) {
	b.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		writeValue(b, v)
	}
	b.WriteByte(']')
}

func (f Func) writeTo(b *strings.Builder) {
	b.WriteString("func ")
	b.WriteString(f.Name)
}

func writeValue(b *strings.Builder, v Value) {
	if v == nil {
		Null{}.writeTo(b)
		return
	}
	v.writeTo(b)
}

// Serialize renders a value into the flat bracketed form used in error
// notifications.
func Serialize(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

// ValueOf converts an arbitrary Go value into a loggable value. It never
// panics: anything it cannot walk degrades to its fmt representation.
func ValueOf(x any) (v Value) {
	defer func() {
		if r := recover(); r != nil {
			v = String(fmt.Sprintf("%v", x))
		}
	}()
	return valueOf(reflect.ValueOf(x), 0)
}

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	valueType    = reflect.TypeOf((*Value)(nil)).Elem()
)

func valueOf(rv reflect.Value, depth int) Value {
	if !rv.IsValid() {
		return Null{}
	}
	if depth > maxDepth {
		return String("[max depth]")
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		if rv.IsNil() {
			return Null{}
		}
	}

	if rv.Type().Implements(valueType) && rv.CanInterface() {
		return rv.Interface().(Value)
	}
	if rv.Type().Implements(errorType) && rv.CanInterface() {
		return errorValue(rv, depth)
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return valueOf(rv.Elem(), depth+1)
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Func:
		fn := runtime.FuncForPC(rv.Pointer())
		if fn == nil {
			return Func{Name: rv.Type().String()}
		}
		return Func{Name: fn.Name()}
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 && rv.Kind() == reflect.Slice {
			return String(string(rv.Bytes()))
		}
		list := make(List, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			list = append(list, valueOf(rv.Index(i), depth+1))
		}
		return list
	case reflect.Map:
		return mapValue(rv, depth)
	case reflect.Struct:
		if rv.Type().Implements(stringerType) && rv.CanInterface() {
			return String(rv.Interface().(fmt.Stringer).String())
		}
		return structValue(rv, depth)
	default:
		if rv.CanInterface() {
			return String(fmt.Sprintf("%v", rv.Interface()))
		}
		return String(rv.Type().String())
	}
}

func mapValue(rv reflect.Value, depth int) Value {
	keys := rv.MapKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = fmt.Sprint(k.Interface())
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return names[order[a]] < names[order[b]] })

	fields := make(Fields, 0, len(keys))
	for _, i := range order {
		fields = append(fields, Field{Name: names[i], Value: valueOf(rv.MapIndex(keys[i]), depth+1)})
	}
	return fields
}

func structValue(rv reflect.Value, depth int) Fields {
	t := rv.Type()
	fields := make(Fields, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}
		fields = append(fields, Field{Name: name, Value: valueOf(rv.Field(i), depth+1)})
	}
	return fields
}

// errorValue renders an error as its message followed by the exported
// fields of its concrete type and the chain it wraps.
func errorValue(rv reflect.Value, depth int) Value {
	err := rv.Interface().(error)
	fields := Fields{{Name: "message", Value: String(err.Error())}}

	concrete := rv
	for concrete.Kind() == reflect.Pointer || concrete.Kind() == reflect.Interface {
		if concrete.IsNil() {
			return fields
		}
		concrete = concrete.Elem()
	}
	if concrete.Kind() == reflect.Struct {
		for _, f := range structValue(concrete, depth) {
			if f.Name == "Message" || f.Name == "Err" {
				continue
			}
			fields = append(fields, f)
		}
	}

	if inner := errors.Unwrap(err); inner != nil && depth < maxDepth {
		fields = append(fields, Field{Name: "cause", Value: valueOf(reflect.ValueOf(inner), depth+1)})
	}
	return fields
}
