package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"dbusexplorer/internal/adapter"
	"dbusexplorer/internal/domain"
)

// Fetcher issues the introspection call for one object and classifies
// failures
type Fetcher struct {
	bus     adapter.Transport
	timeout time.Duration
}

// NewFetcher creates a fetcher bound to one bus connection
func NewFetcher(bus adapter.Transport, timeout time.Duration) *Fetcher {
	return &Fetcher{
		bus:     bus,
		timeout: timeout,
	}
}

// Introspect returns the raw schema document of service at path, or a
// protocol fault. It never returns any other kind of error.
func (f *Fetcher) Introspect(ctx context.Context, service, path string) (string, *domain.Fault) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	doc, err := f.bus.Introspect(ctx, service, path)
	if err != nil {
		fault := ClassifyIntrospectError(err).At(service, path)
		logrus.Debugf("introspection of %s %s failed (%s): %v", service, path, fault.Kind, err)
		return "", fault
	}
	return doc, nil
}

// ClassifyIntrospectError maps a failed introspection call to a protocol
// fault
func ClassifyIntrospectError(err error) *domain.Fault {
	name := adapter.ErrorName(err)
	if name == "" {
		// Errors that lost their reply type still carry the name in the text
		msg := err.Error()
		for _, known := range []string{
			adapter.ErrNameAccessDenied,
			adapter.ErrNameUnknownMethod,
			adapter.ErrNameUnknownInterface,
		} {
			if strings.Contains(msg, known) {
				name = known
				break
			}
		}
	}

	switch name {
	case adapter.ErrNameAccessDenied:
		return domain.NewFault(domain.KindAccessDenied,
			"Access denied - not authorized to introspect this object", nil)
	case adapter.ErrNameUnknownMethod, adapter.ErrNameUnknownInterface:
		return domain.NewFault(domain.KindUnsupported,
			"Object does not support introspection", nil)
	default:
		return domain.NewFault(domain.KindIntrospection, "Introspection failed", err)
	}
}
