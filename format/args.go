package format

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/teranos/callgen/errors"
)

// ArgsDecoder is implemented by formats with a stricter decode path for
// call arguments than for arbitrary values.
type ArgsDecoder interface {
	UnmarshalArgs(data []byte, v interface{}) error
}

// UnmarshalArgs decodes call arguments with f. Formats implementing
// ArgsDecoder reject payloads that do not carry every declared argument.
func UnmarshalArgs(f Format, data []byte, v interface{}) error {
	if d, ok := f.(ArgsDecoder); ok {
		return d.UnmarshalArgs(data, v)
	}
	return f.Unmarshal(data, v)
}

// argField is one wire field of an Args struct.
type argField struct {
	name     string
	nullable bool
}

// argShape caches the wire fields of a struct type; ok is false for
// non-struct targets.
type argShape struct {
	json    []argField
	msgpack int
	ok      bool
}

var shapes sync.Map // reflect.Type -> argShape

func shapeOf(v interface{}) argShape {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return argShape{}
	}
	if s, ok := shapes.Load(t); ok {
		return s.(argShape)
	}

	s := argShape{ok: true}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		if tag := sf.Tag.Get("msgpack"); tag != "-" {
			s.msgpack++
		}

		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if strings.Contains(","+opts+",", ",omitempty,") {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		switch sf.Type.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			s.json = append(s.json, argField{name: name, nullable: true})
		default:
			s.json = append(s.json, argField{name: name})
		}
	}
	shapes.Store(t, s)
	return s
}

// UnmarshalArgs requires a JSON object holding every non-omitempty field;
// keys match case-sensitively and non-nullable fields reject null.
func (jsonFormat) UnmarshalArgs(data []byte, v interface{}) error {
	shape := shapeOf(v)
	if !shape.ok {
		return jsonAPI.Unmarshal(data, v)
	}

	var obj map[string]jsoniter.RawMessage
	if err := jsonAPI.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(err, "arguments must be a JSON object")
	}
	if obj == nil {
		return errors.New("arguments cannot be null")
	}
	for _, f := range shape.json {
		raw, ok := obj[f.name]
		if !ok {
			return errors.Newf("missing field %q", f.name)
		}
		if !f.nullable && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return errors.Newf("field %q cannot be null", f.name)
		}
	}
	return jsonAPI.Unmarshal(data, v)
}

// UnmarshalArgs requires a positional array with exactly one element per
// field and nothing after it.
func (f msgpackFormat) UnmarshalArgs(data []byte, v interface{}) error {
	shape := shapeOf(v)
	if !shape.ok {
		return f.Unmarshal(data, v)
	}
	n, ok := msgpackArrayLen(data)
	if !ok {
		return errors.New("arguments must be a msgpack array")
	}
	if n != shape.msgpack {
		return errors.Newf("expected %d arguments, got %d", shape.msgpack, n)
	}
	return f.Unmarshal(data, v)
}

func msgpackArrayLen(data []byte) (int, bool) {
	if len(data) == 0 {
		return 0, false
	}
	switch c := data[0]; {
	case c >= 0x90 && c <= 0x9f:
		return int(c & 0x0f), true
	case c == 0xdc && len(data) >= 3:
		return int(binary.BigEndian.Uint16(data[1:3])), true
	case c == 0xdd && len(data) >= 5:
		return int(binary.BigEndian.Uint32(data[1:5])), true
	}
	return 0, false
}
