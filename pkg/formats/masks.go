package formats

import (
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/Faultbox/blendmask/pkg/mask"
)

// ParseMasks parses expression mask data: a JSON object mapping base mesh
// names to per-vertex weight lists in topology order.
func ParseMasks(data []byte) (map[string]mask.Weights, error) {
	var masks map[string]mask.Weights
	if err := gojson.Unmarshal(data, &masks); err != nil {
		return nil, fmt.Errorf("parsing masks: %w", err)
	}
	if masks == nil {
		masks = make(map[string]mask.Weights)
	}
	return masks, nil
}

// ParseMasksFile parses expression mask data from disk.
func ParseMasksFile(path string) (map[string]mask.Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading masks file: %w", err)
	}
	return ParseMasks(data)
}

// LoadStore parses mask data and registers every entry in store.
// It returns the number of masks loaded.
func LoadStore(data []byte, store *mask.Store) (int, error) {
	masks, err := ParseMasks(data)
	if err != nil {
		return 0, err
	}
	for name, w := range masks {
		store.Put(name, w)
	}
	return len(masks), nil
}

// WriteMasks encodes masks in the same layout ParseMasks reads.
func WriteMasks(w io.Writer, masks map[string]mask.Weights) error {
	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(masks); err != nil {
		return fmt.Errorf("encoding masks: %w", err)
	}
	return nil
}
