package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"dbusexplorer/internal/domain"
)

// JSONCodec handles JSON export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of the encoded output
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Export writes the discovered services as indented JSON
func (c *JSONCodec) Export(services []domain.ServiceRecord, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if services == nil {
		services = []domain.ServiceRecord{}
	}
	if err := encoder.Encode(services); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
