package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the backend's response wrapper.
type Envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	StatusCode int             `json:"statusCode"`
}

// HasData reports whether the envelope carries a non-null payload.
func (e *Envelope) HasData() bool {
	if e == nil {
		return false
	}
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// Decode unmarshals the payload into v. A missing or null payload leaves v
// untouched.
func (e *Envelope) Decode(v any) error {
	if !e.HasData() {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// parseEnvelope decodes body as an Envelope. ok is false when the body is
// empty or not a JSON object.
func parseEnvelope(body []byte) (*Envelope, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	return &env, true
}
