package parse

import (
	"encoding/json"
	"strings"
)

// PartialGuard prefixes every "partial" response so that it cannot be
// executed as a script.
const PartialGuard = "while(1);"

// Partial is the json document following PartialGuard.
type Partial struct {
	Payload json.RawMessage `json:"Payload"`
	Errors  json.RawMessage `json:"Errors,omitempty"`
}

type htmlPayload struct {
	Html string `json:"Html"`
}

// DecodePartial strips the guard and decodes the json document, the
// payload is returned unchanged.
func DecodePartial(raw string) (Partial, error) {
	trimmed := strings.TrimLeft(raw, " \t\r\n\ufeff")
	if !strings.HasPrefix(trimmed, PartialGuard) {
		return Partial{}, parseError(ErrPartial, "missing guard", nil)
	}
	var out Partial
	err := json.Unmarshal([]byte(trimmed[len(PartialGuard):]), &out)
	if err != nil {
		return Partial{}, parseError(ErrPartial, "", err)
	}
	return out, nil
}

// PartialHtml decodes a partial whose payload carries an Html field.
func PartialHtml(raw string) (string, error) {
	partial, err := DecodePartial(raw)
	if err != nil {
		return "", err
	}
	if len(partial.Payload) == 0 || string(partial.Payload) == "null" {
		return "", parseError(ErrPartial, "empty payload", nil)
	}
	var payload htmlPayload
	err = json.Unmarshal(partial.Payload, &payload)
	if err != nil {
		return "", parseError(ErrPartial, "payload", err)
	}
	return payload.Html, nil
}

// PartialBool decodes a partial whose payload is a bare boolean.
func PartialBool(raw string) (bool, error) {
	partial, err := DecodePartial(raw)
	if err != nil {
		return false, err
	}
	var out bool
	err = json.Unmarshal(partial.Payload, &out)
	if err != nil {
		return false, parseError(ErrPartial, "payload", err)
	}
	return out, nil
}
