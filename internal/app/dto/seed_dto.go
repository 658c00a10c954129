package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SeedResponse is the body of POST /api/seed
type SeedResponse struct {
	Message string `json:"message"`
}

// DecodeSeedResponse reads the message of a seed response.
// Anything other than an object with a string message yields an empty message.
func DecodeSeedResponse(data []byte) (SeedResponse, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return SeedResponse{}, fmt.Errorf("failed to decode seed response: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return SeedResponse{}, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return SeedResponse{}, fmt.Errorf("failed to decode seed response: %w", err)
	}

	message, _ := fields["message"].(string)
	return SeedResponse{Message: message}, nil
}
