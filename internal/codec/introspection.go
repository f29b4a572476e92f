package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/godbus/dbus/v5/introspect"
	"github.com/sirupsen/logrus"

	"dbusexplorer/internal/domain"
)

// DescriptionAnnotation is the annotation key carrying human-readable
// documentation for an interface or member
const DescriptionAnnotation = "org.freedesktop.DBus.Description"

// DefaultQuietNamespaces lists service prefixes whose parse failures are not
// logged
var DefaultQuietNamespaces = []string{"org.freedesktop."}

// IntrospectionParser decodes org.freedesktop.DBus.Introspectable documents
type IntrospectionParser struct {
	quiet []string
}

// NewIntrospectionParser creates a parser. Parse failures for services whose
// name starts with one of quietNamespaces are not logged.
func NewIntrospectionParser(quietNamespaces []string) *IntrospectionParser {
	return &IntrospectionParser{quiet: quietNamespaces}
}

// Parse decodes doc into interfaces and child node names. A document that is
// not well-formed, or that omits a required attribute, yields a parse fault
// and no records.
func (p *IntrospectionParser) Parse(doc, service, path string) ([]domain.InterfaceRecord, []string, error) {
	var node introspect.Node
	err := decodeNode(doc, &node)
	if err == nil {
		err = checkNode(&node)
	}
	if err != nil {
		if !p.isQuiet(service) {
			logrus.Debugf("XML parsing failed for %s:%s\nContent:\n%s", service, path, doc)
		}
		cause := fmt.Errorf("failed to parse D-Bus introspection XML for %s:%s: %w", service, path, err)
		return nil, nil, domain.NewFault(domain.KindParse, "XML parsing failed", cause).At(service, path)
	}

	logrus.Debugf("XML parsing successful for %s:%s\nContent:\n%s", service, path, doc)

	children := make([]string, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, child.Name)
	}

	interfaces := make([]domain.InterfaceRecord, 0, len(node.Interfaces))
	for _, iface := range node.Interfaces {
		interfaces = append(interfaces, convertInterface(iface))
	}

	return interfaces, children, nil
}

func (p *IntrospectionParser) isQuiet(service string) bool {
	for _, prefix := range p.quiet {
		if prefix != "" && strings.HasPrefix(service, prefix) {
			return true
		}
	}
	return false
}

// decodeNode decodes the root element and rejects anything but whitespace,
// comments and processing instructions after it
func decodeNode(doc string, node *introspect.Node) error {
	decoder := xml.NewDecoder(strings.NewReader(doc))
	if err := decoder.Decode(node); err != nil {
		return err
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after root node", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("unexpected text after root node")
			}
		}
	}
}

// checkNode rejects documents missing attributes every introspection
// document must carry
func checkNode(node *introspect.Node) error {
	for _, child := range node.Children {
		if child.Name == "" {
			return errors.New("child node without name")
		}
	}

	for _, iface := range node.Interfaces {
		if iface.Name == "" {
			return errors.New("interface without name")
		}
		for _, m := range iface.Methods {
			if m.Name == "" {
				return fmt.Errorf("method without name in %s", iface.Name)
			}
			if err := checkArgs(m.Args, iface.Name, m.Name); err != nil {
				return err
			}
			if err := checkAnnotations(m.Annotations, iface.Name+"."+m.Name); err != nil {
				return err
			}
		}
		for _, s := range iface.Signals {
			if s.Name == "" {
				return fmt.Errorf("signal without name in %s", iface.Name)
			}
			if err := checkArgs(s.Args, iface.Name, s.Name); err != nil {
				return err
			}
			if err := checkAnnotations(s.Annotations, iface.Name+"."+s.Name); err != nil {
				return err
			}
		}
		for _, prop := range iface.Properties {
			switch {
			case prop.Name == "":
				return fmt.Errorf("property without name in %s", iface.Name)
			case prop.Type == "":
				return fmt.Errorf("property %s.%s without type", iface.Name, prop.Name)
			case !domain.Access(prop.Access).Valid():
				return fmt.Errorf("property %s.%s has invalid access %q", iface.Name, prop.Name, prop.Access)
			}
			if err := checkAnnotations(prop.Annotations, iface.Name+"."+prop.Name); err != nil {
				return err
			}
		}
		if err := checkAnnotations(iface.Annotations, iface.Name); err != nil {
			return err
		}
	}
	return nil
}

// checkAnnotations requires a name on every annotation and a value on
// description annotations
func checkAnnotations(annotations []introspect.Annotation, owner string) error {
	for _, a := range annotations {
		if a.Name == "" {
			return fmt.Errorf("annotation without name in %s", owner)
		}
		if a.Name == DescriptionAnnotation && a.Value == "" {
			return fmt.Errorf("description annotation without value in %s", owner)
		}
	}
	return nil
}

func checkArgs(args []introspect.Arg, iface, member string) error {
	for i, a := range args {
		if a.Type == "" {
			return fmt.Errorf("argument %d of %s.%s without type", i, iface, member)
		}
	}
	return nil
}

func convertInterface(iface introspect.Interface) domain.InterfaceRecord {
	rec := domain.InterfaceRecord{
		Name:        iface.Name,
		Methods:     make([]domain.MethodRecord, 0, len(iface.Methods)),
		Properties:  make([]domain.PropertyRecord, 0, len(iface.Properties)),
		Signals:     make([]domain.SignalRecord, 0, len(iface.Signals)),
		Description: description(iface.Annotations),
	}

	for _, m := range iface.Methods {
		method := domain.MethodRecord{
			Name:        m.Name,
			Args:        []domain.Argument{},
			Returns:     []domain.Argument{},
			Description: description(m.Annotations),
		}
		for _, a := range m.Args {
			arg := convertArg(a)
			if arg.Direction == domain.DirectionOut {
				method.Returns = append(method.Returns, arg)
			} else {
				method.Args = append(method.Args, arg)
			}
		}
		rec.Methods = append(rec.Methods, method)
	}

	for _, prop := range iface.Properties {
		rec.Properties = append(rec.Properties, domain.PropertyRecord{
			Name:        prop.Name,
			Type:        prop.Type,
			Access:      domain.Access(prop.Access),
			Description: description(prop.Annotations),
		})
	}

	for _, s := range iface.Signals {
		signal := domain.SignalRecord{
			Name:        s.Name,
			Args:        make([]domain.Argument, 0, len(s.Args)),
			Description: description(s.Annotations),
		}
		for _, a := range s.Args {
			signal.Args = append(signal.Args, convertArg(a))
		}
		rec.Signals = append(rec.Signals, signal)
	}

	return rec
}

func convertArg(a introspect.Arg) domain.Argument {
	return domain.Argument{
		Name:      a.Name,
		Type:      a.Type,
		Direction: domain.Direction(a.Direction),
	}
}

// description returns the value of the first description annotation
func description(annotations []introspect.Annotation) string {
	for _, a := range annotations {
		if a.Name == DescriptionAnnotation {
			return a.Value
		}
	}
	return ""
}
