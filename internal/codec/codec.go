package codec

import (
	"fmt"
	"io"

	"dbusexplorer/internal/domain"
)

// SchemaParser decodes an introspection document into interfaces and the
// child segments it advertises
type SchemaParser interface {
	Parse(doc, service, path string) ([]domain.InterfaceRecord, []string, error)
}

// Exporter interface for exporting discovered services to various formats
type Exporter interface {
	Export(services []domain.ServiceRecord, w io.Writer) error
	Format() string
	ContentType() string
}

// ExporterFor returns the exporter registered for format
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
