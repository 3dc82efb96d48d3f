package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the parsed top-level JSON object every Dispatch endpoint
// returns. Fields retains all top-level members so callers can reach
// anything beyond the standard success/data/error triple.
type Envelope struct {
	Success bool
	Data    json.RawMessage
	Error   json.RawMessage
	Fields  map[string]json.RawMessage
}

func parseEnvelope(body []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &MalformedError{Err: err, Snippet: snippet(body)}
	}
	if fields == nil {
		// A bare "null" decodes into a nil map without error.
		return nil, &MalformedError{Err: errors.New("top-level value is not a JSON object"), Snippet: snippet(body)}
	}

	env := &Envelope{Fields: fields}
	if raw, ok := fields["success"]; ok {
		var flag bool
		if err := json.Unmarshal(raw, &flag); err == nil {
			env.Success = flag
		}
	}
	env.Data = fields["data"]
	env.Error = fields["error"]
	return env, nil
}

// DecodeData unmarshals the envelope's data field into out. A missing field
// or a shape mismatch is an error; callers treat either as fatal.
func (e *Envelope) DecodeData(out any) error {
	if len(e.Data) == 0 {
		return errors.New("response data field missing")
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// ErrorText renders the envelope's error field for display. String values
// are unquoted; anything else is returned as raw JSON text.
func (e *Envelope) ErrorText() string {
	if len(e.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	return string(e.Error)
}
