package retention

import (
	"encoding/json"
	"io"
)

// Codec determines how the slots are encoded on a medium.
type Codec interface {
	Encode(w io.Writer, slots map[string]int64) error
	Decode(r io.Reader) (map[string]int64, error)
}

// JSONCodec encodes slots as a JSON object.
type JSONCodec struct{}

// Encode writes the slots as JSON to the provided writer
func (c JSONCodec) Encode(w io.Writer, slots map[string]int64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(slots)
}

// Decode reads JSON data from the reader and returns the slots.
func (c JSONCodec) Decode(r io.Reader) (map[string]int64, error) {
	decoder := json.NewDecoder(r)

	var slots map[string]int64

	err := decoder.Decode(&slots)
	if err != nil {
		return nil, err
	}

	if slots == nil {
		slots = make(map[string]int64)
	}

	return slots, nil
}
