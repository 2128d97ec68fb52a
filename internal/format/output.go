// Package format renders command results on stdout. Results are wrapped in an Envelope, so every
// JSON document has a top-level "data" key and an optional "meta".
package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Names accepted by --format and TOOLBAR_FORMAT. The empty name means JSON.
const (
	JSON = "json"
	Text = "text"
)

var ErrUnknownFormat = errors.New("unknown format")

// Envelope is the top-level object of a command result.
type Envelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// Check reports whether name is an output format Write understands.
func Check(name string) error {
	switch name {
	case "", JSON, Text:
		return nil
	}
	return fmt.Errorf("%w %q (want %s or %s)", ErrUnknownFormat, name, JSON, Text)
}

// Write renders v as JSON or, for Text, as a table when v (or the Data of an Envelope) is a
// Tabler.
func Write(w io.Writer, v any, name string, pretty bool) error {
	if err := Check(name); err != nil {
		return err
	}
	if name == Text {
		return WriteText(w, v)
	}
	return WriteJSON(w, v, pretty)
}

// WriteJSON writes v as one JSON document and a newline. <, > and & are kept literal since
// button actions are template text.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
