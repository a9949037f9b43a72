// Package iojson reads and writes the JSON documents commands accept and
// print.
package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Error is the document printed when a command in JSON mode fails.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// encode renders v as indented JSON with a trailing newline. HTML is not
// escaped; comment bodies are printed as written.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalFailure reports an encoding failure as an Error document. It is
// built by hand since the failing value cannot be encoded.
func marshalFailure(msg string, err error) []byte {
	m, _ := json.Marshal(msg)
	e, _ := json.Marshal(err.Error())
	return fmt.Appendf(nil, "{\"message\":%s,\"data\":{\"json_error\":%s}}\n", m, e)
}

// MarshalError renders an Error document without the trailing newline.
func MarshalError(msg string, data map[string]any) string {
	bits, err := encode(Error{Message: msg, Data: data})
	if err != nil {
		bits = marshalFailure(msg, err)
	}
	return string(bytes.TrimSuffix(bits, []byte("\n")))
}

// WriteErrTo writes err as an Error document to w.
func WriteErrTo(w io.Writer, err error) error {
	_, werr := fmt.Fprintln(w, MarshalError(err.Error(), nil))
	return werr
}

// WriteWith writes obj as indented JSON to w. When obj cannot be encoded an
// Error document goes to ew instead and nothing is written to w.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := encode(obj)
	if err != nil {
		_, werr := ew.Write(marshalFailure("cannot encode output", err))
		return werr
	}

	_, err = w.Write(bits)
	return err
}
