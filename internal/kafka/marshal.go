package kafka

import (
	"encoding/json"
	"fmt"
)

// UnwrapPayload memudahkan decode payload spesifik
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if len(payload) == 0 {
		return t, fmt.Errorf("decode payload: empty")
	}
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
