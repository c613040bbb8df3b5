package run

import (
	"bytes"
	"encoding/json"
)

// encodeJSON returns the JSON encoding string with HTML escaping disabled.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
