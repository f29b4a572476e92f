package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"dbusexplorer/internal/codec"
	"dbusexplorer/internal/domain"
)

// Walker discovers the object tree of a service starting at "/". Failures of
// single objects are recorded on those objects; a walk never aborts.
type Walker struct {
	fetcher *Fetcher
	parser  codec.SchemaParser
}

// NewWalker creates a walker
func NewWalker(fetcher *Fetcher, parser codec.SchemaParser) *Walker {
	return &Walker{
		fetcher: fetcher,
		parser:  parser,
	}
}

// Walk introspects "/" and then every child path advertised by a
// successfully decoded object. Only advertised children are explored, and
// each path is introspected at most once even if the service advertises
// cycles. The owner of the returned record is left empty.
func (w *Walker) Walk(ctx context.Context, service string) domain.ServiceRecord {
	record := domain.ServiceRecord{
		Name:    service,
		Objects: []domain.ObjectRecord{},
	}

	root := w.IntrospectObject(ctx, service, domain.RootPath)
	if root.Failed() {
		// Nothing reliable to expand from
		record.Objects = append(record.Objects, root)
	} else {
		visited := map[string]bool{domain.RootPath: true}
		stack := []domain.ObjectRecord{root}

		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, child := range current.Children {
				childPath := domain.JoinPath(current.Path, child)
				if visited[childPath] {
					continue
				}
				visited[childPath] = true
				stack = append(stack, w.IntrospectObject(ctx, service, childPath))
			}

			record.Objects = append(record.Objects, current)
		}
	}

	if len(record.Objects) == 0 && record.Error == nil {
		record.Error = domain.NewFault(domain.KindUnauthorized,
			"No accessible objects found or service not authorized", nil).At(service, "")
	}

	logrus.Debugf("walked %s: %d objects, %d failed", service, len(record.Objects), len(record.FailedObjects()))
	return record
}

// IntrospectObject fetches and decodes a single object. Failed objects have
// no interfaces and no children.
func (w *Walker) IntrospectObject(ctx context.Context, service, path string) domain.ObjectRecord {
	doc, fault := w.fetcher.Introspect(ctx, service, path)
	if fault != nil {
		return failedObject(path, fault)
	}

	interfaces, children, err := w.parser.Parse(doc, service, path)
	if err != nil {
		var f *domain.Fault
		if !errors.As(err, &f) {
			f = domain.NewFault(domain.KindParse, "XML parsing failed", err).At(service, path)
		}
		return failedObject(path, f)
	}

	return domain.ObjectRecord{
		Path:       path,
		Interfaces: interfaces,
		Children:   children,
	}
}

func failedObject(path string, fault *domain.Fault) domain.ObjectRecord {
	return domain.ObjectRecord{
		Path:       path,
		Interfaces: []domain.InterfaceRecord{},
		Error:      fault,
	}
}
