package models

import (
	"encoding/json"
	"fmt"
)

// Sample is a Prometheus [timestamp, "value"] pair. The timestamp is in
// unix seconds with a fractional part.
type Sample struct {
	Timestamp float64
	Value     string
}

func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Timestamp, s.Value})
}

func (s *Sample) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode sample: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode sample: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &s.Timestamp); err != nil {
		return fmt.Errorf("decode sample timestamp: %w", err)
	}
	if err := json.Unmarshal(pair[1], &s.Value); err != nil {
		return fmt.Errorf("decode sample value: %w", err)
	}
	return nil
}
