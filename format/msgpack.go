package format

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/teranos/callgen/errors"
)

type msgpackFormat struct{}

// Msgpack is the compact positional format. Structs travel as arrays in
// field declaration order, so both ends must agree on the field order.
var Msgpack Format = msgpackFormat{}

func (msgpackFormat) Name() string { return "msgpack" }

func (msgpackFormat) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseArrayEncodedStructs(true)
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes exactly one value; trailing bytes are an error.
func (msgpackFormat) Unmarshal(data []byte, v interface{}) error {
	r := bytes.NewReader(data)
	if err := msgpack.NewDecoder(r).Decode(v); err != nil {
		return err
	}
	if r.Len() > 0 {
		return errors.Newf("%d trailing bytes after msgpack value", r.Len())
	}
	return nil
}
