package remote

import (
	"encoding/json"
	"errors"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
)

var errNotEnvelope = errors.New("response is not a JSON envelope")

func parseEnvelope(body []byte) (*Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, errNotEnvelope
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errNotEnvelope
	}

	resp := &Response{
		Success: root.Get("success").Bool(),
		Error:   root.Get("error").String(),
	}
	if data := root.Get("data"); data.Exists() && data.Type != gjson.Null {
		resp.Data = json.RawMessage(data.Raw)
	}
	return resp, nil
}

// decodeRows decodes a data array of spreadsheet rows into out, which must be
// a pointer to a slice. Cells are weakly typed: numeric ids and capacities
// become strings, nested arrays or objects bound for a string field are
// re-encoded as JSON.
func decodeRows(data json.RawMessage, out any) error {
	if len(data) == 0 {
		return nil
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return errors.New("data is not an array")
	}
	return weakDecode(parsed.Value(), out)
}

// decodeObject decodes a single data object into out.
func decodeObject(data json.RawMessage, out any) error {
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return errors.New("data is not an object")
	}
	return weakDecode(parsed.Value(), out)
}

func weakDecode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       jsonStringHook,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func jsonStringHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Slice, reflect.Map:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return data, nil
}
