package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrDecode marks an envelope or payload that is not valid for dispatch.
	ErrDecode = errors.New("decode error")
	// ErrUnknownAction marks an identifier naming no supported action.
	ErrUnknownAction = errors.New("unknown action")
)

// Envelope is one inbound command notification.
type Envelope struct {
	// Identifier is "<namespace>:<action>".
	Identifier string `json:"identifier"`
	// Payload is JSON text: {"database": ..., "collection": ..., ...actionData}.
	Payload string `json:"payload"`
}

// UnmarshalJSON accepts the payload either as a JSON string or inline.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire struct {
		Identifier string          `json:"identifier"`
		Payload    json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	e.Identifier = wire.Identifier
	payload := bytes.TrimSpace(wire.Payload)
	if len(payload) > 0 && payload[0] == '"' {
		return json.Unmarshal(payload, &e.Payload)
	}
	e.Payload = string(payload)
	return nil
}

// DecodeEnvelope parses an envelope from its wire form.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: envelope: %v", ErrDecode, err)
	}
	return env, nil
}

// RoutedRequest is a payload split into its routing fields and the
// action data handed to the store operation.
type RoutedRequest struct {
	Database   string
	Collection string
	Data       json.RawMessage
}

// ParsePayload extracts database and collection from payload. Both must
// be present as strings; the remaining members become Data.
func ParsePayload(payload string) (RoutedRequest, error) {
	fields, err := decodeObject(payload)
	if err != nil {
		return RoutedRequest{}, err
	}
	return route(fields)
}

// decodeObject parses payload, which must be a JSON object.
func decodeObject(payload string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object: %v", ErrDecode, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: payload must be a JSON object, got null", ErrDecode)
	}
	return fields, nil
}

// route takes the routing members out of fields.
func route(fields map[string]json.RawMessage) (RoutedRequest, error) {
	database, err := routeField(fields, "database")
	if err != nil {
		return RoutedRequest{}, err
	}
	collection, err := routeField(fields, "collection")
	if err != nil {
		return RoutedRequest{}, err
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return RoutedRequest{}, fmt.Errorf("%w: action data: %v", ErrDecode, err)
	}
	return RoutedRequest{Database: database, Collection: collection, Data: data}, nil
}

// routeField removes and returns a string member of fields.
func routeField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%w: payload is missing %q", ErrDecode, name)
	}
	var value string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) || json.Unmarshal(raw, &value) != nil {
		return "", fmt.Errorf("%w: %q must be a string", ErrDecode, name)
	}
	delete(fields, name)
	return value, nil
}

// Result is the outcome of one dispatched action.
type Result struct {
	Action string
	Result json.RawMessage
}

// Command formats the result as "<namespace>:<action> <json>".
func (r Result) Command(namespace string) string {
	return namespace + ":" + r.Action + " " + string(r.Result)
}
