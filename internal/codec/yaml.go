package codec

import (
	"fmt"
	"io"

	"dbusexplorer/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of the encoded output
func (c *YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

// yamlService is a compact, human-oriented rendering of a ServiceRecord.
// Arguments are flattened to "name:type" strings.
type yamlService struct {
	Name    string       `yaml:"name"`
	Owner   string       `yaml:"owner,omitempty"`
	Error   string       `yaml:"error,omitempty"`
	Objects []yamlObject `yaml:"objects,omitempty"`
}

type yamlObject struct {
	Path       string          `yaml:"path"`
	Error      string          `yaml:"error,omitempty"`
	Interfaces []yamlInterface `yaml:"interfaces,omitempty"`
}

type yamlInterface struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Methods     []yamlMethod   `yaml:"methods,omitempty"`
	Properties  []yamlProperty `yaml:"properties,omitempty"`
	Signals     []yamlSignal   `yaml:"signals,omitempty"`
}

type yamlMethod struct {
	Name        string   `yaml:"name"`
	Args        []string `yaml:"args,omitempty"`
	Returns     []string `yaml:"returns,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

type yamlProperty struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Access      string `yaml:"access"`
	Description string `yaml:"description,omitempty"`
}

type yamlSignal struct {
	Name        string   `yaml:"name"`
	Args        []string `yaml:"args,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Export writes the discovered services as YAML
func (c *YAMLCodec) Export(services []domain.ServiceRecord, w io.Writer) error {
	out := make([]yamlService, 0, len(services))

	for _, svc := range services {
		ys := yamlService{
			Name:  svc.Name,
			Owner: svc.Owner,
			Error: faultString(svc.Error),
		}
		for _, obj := range svc.Objects {
			yo := yamlObject{
				Path:  obj.Path,
				Error: faultString(obj.Error),
			}
			for _, iface := range obj.Interfaces {
				yo.Interfaces = append(yo.Interfaces, toYAMLInterface(iface))
			}
			ys.Objects = append(ys.Objects, yo)
		}
		out = append(out, ys)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

func toYAMLInterface(iface domain.InterfaceRecord) yamlInterface {
	yi := yamlInterface{
		Name:        iface.Name,
		Description: iface.Description,
	}
	for _, m := range iface.Methods {
		yi.Methods = append(yi.Methods, yamlMethod{
			Name:        m.Name,
			Args:        argStrings(m.Args),
			Returns:     argStrings(m.Returns),
			Description: m.Description,
		})
	}
	for _, p := range iface.Properties {
		yi.Properties = append(yi.Properties, yamlProperty{
			Name:        p.Name,
			Type:        p.Type,
			Access:      string(p.Access),
			Description: p.Description,
		})
	}
	for _, s := range iface.Signals {
		yi.Signals = append(yi.Signals, yamlSignal{
			Name:        s.Name,
			Args:        argStrings(s.Args),
			Description: s.Description,
		})
	}
	return yi
}

func argStrings(args []domain.Argument) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, a.String())
	}
	return out
}

func faultString(f *domain.Fault) string {
	if f == nil {
		return ""
	}
	return f.Error()
}
