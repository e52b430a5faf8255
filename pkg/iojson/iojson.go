// Package iojson holds helpers for writing JSON from a command line
// interface: machine readable summaries, error envelopes and key ordered
// objects that encoding/json maps cannot express.
package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Error is the standard error format type that is returned when errors
// happen.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func jsonError(msg string, jsonErr error) string {
	// Use json.Marshal to properly escape strings
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}

// MarshalError builds the error envelope for msg. If data cannot be
// marshaled a minimal envelope describing the marshal failure is returned
// instead, which indicates a bug in the caller.
func MarshalError(msg string, data map[string]any) string {
	resp := Error{Message: msg, Data: data}

	bits, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return jsonError(msg, err)
	}

	return string(bits)
}

// WriteError writes the error envelope for str to w.
func WriteError(w io.Writer, str string, data map[string]any) error {
	_, err := fmt.Fprintln(w, MarshalError(str, data))
	return err
}

// WriteWith writes obj as indented JSON to w. Marshal failures are reported
// to ew as an error envelope.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		errStr := jsonError("error marshaling in iojson.Write", err)
		_, err = fmt.Fprintln(ew, errStr)
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// Member is one key of an ordered object.
type Member struct {
	Key   string
	Value any
}

// WriteObject writes members as a single JSON object, keys in the order
// given, each level indented by indent. HTML characters are not escaped and
// non-ASCII text is written as UTF-8. No trailing newline is written. An
// empty object is written as {}.
func WriteObject(w io.Writer, members []Member, indent string) error {
	if len(members) == 0 {
		_, err := io.WriteString(w, "{}")
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, m := range members {
		key, err := encode(m.Key, "", "")
		if err != nil {
			return fmt.Errorf("encode key %q: %w", m.Key, err)
		}
		value, err := encode(m.Value, indent, indent)
		if err != nil {
			return fmt.Errorf("encode value for %q: %w", m.Key, err)
		}

		buf.WriteString(indent)
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		if i < len(members)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')

	_, err := w.Write(buf.Bytes())
	return err
}

func encode(v any, prefix, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent(prefix, indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
