package format

import (
	jsoniter "github.com/json-iterator/go"
)

// jsonAPI follows encoding/json except that object keys match struct tags
// case-sensitively.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

type jsonFormat struct{}

// JSON is the textual format: field names on the wire, encoding/json rules.
var JSON Format = jsonFormat{}

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) Marshal(v interface{}) ([]byte, error) {
	return jsonAPI.Marshal(v)
}

func (jsonFormat) Unmarshal(data []byte, v interface{}) error {
	return jsonAPI.Unmarshal(data, v)
}
