package display

import (
	"encoding/json"
	"io"
)

// MarshalJSON renders v as indented JSON, or on one line when compact is set.
func MarshalJSON(v any, compact bool) ([]byte, error) {
	if compact {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// WriteJSON writes v followed by a newline.
func WriteJSON(w io.Writer, v any, compact bool) error {
	data, err := MarshalJSON(v, compact)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
