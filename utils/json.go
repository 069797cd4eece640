package utils

import (
	"bytes"

	gojson "github.com/goccy/go-json"
)

var encodeOptions = []gojson.EncodeOptionFunc{gojson.DisableHTMLEscape(), gojson.DisableNormalizeUTF8()}

func MarshalJSONIndent(val any, indent string) ([]byte, error) {
	return gojson.MarshalIndentWithOption(val, "", indent, encodeOptions...)
}

// UnmarshalJSONStrict decodes data into val, failing on fields val does not declare.
func UnmarshalJSONStrict(data []byte, val any) error {
	decoder := gojson.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(val)
}
