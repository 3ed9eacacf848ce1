package api

import (
	"bytes"         // Raw JSON inspection
	"encoding/json" // Flexible id decoding
	"strconv"       // Numeric strings
	"strings"       // Trimming
)

// optionalID accepts a JSON number, a numeric string, "" or null. Form
// clients send select values as strings.
type optionalID struct {
	Value *uint
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		o.Value = nil
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return err
	}
	id := uint(n)
	o.Value = &id
	return nil
}
