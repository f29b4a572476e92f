package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"dbusexplorer/internal/adapter"
	"dbusexplorer/internal/domain"
)

// uniqueNamePrefix marks connection-private names such as ":1.42"
const uniqueNamePrefix = ":"

// NameRegistry lists bus names and resolves their owners
type NameRegistry struct {
	bus          adapter.Transport
	ownerTimeout time.Duration
}

// NewNameRegistry creates a registry bound to one bus connection
func NewNameRegistry(bus adapter.Transport, ownerTimeout time.Duration) *NameRegistry {
	return &NameRegistry{
		bus:          bus,
		ownerTimeout: ownerTimeout,
	}
}

// ListNames returns the sorted, de-duplicated public names on the bus. A
// transport failure is a connection fault.
func (r *NameRegistry) ListNames(ctx context.Context, timeout time.Duration) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	names, err := r.bus.ListNames(ctx)
	if err != nil {
		return nil, domain.NewFault(domain.KindConnection, "failed to list D-Bus names", err)
	}

	public := PublicNames(names)
	logrus.Debugf("bus lists %d names, %d public", len(names), len(public))
	return public, nil
}

// ResolveOwner returns the unique connection name owning name, or "" when
// it cannot be resolved for any reason
func (r *NameRegistry) ResolveOwner(ctx context.Context, name string) string {
	ctx, cancel := context.WithTimeout(ctx, r.ownerTimeout)
	defer cancel()

	owner, err := r.bus.GetNameOwner(ctx, name)
	if err != nil {
		logrus.Debugf("no owner for %s: %v", name, err)
		return ""
	}
	return owner
}

// PublicNames drops unique connection names, then sorts and de-duplicates
// the rest
func PublicNames(names []string) []string {
	public := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, uniqueNamePrefix) {
			continue
		}
		public = append(public, name)
	}

	sort.Strings(public)

	out := public[:0]
	for _, name := range public {
		if len(out) > 0 && out[len(out)-1] == name {
			continue
		}
		out = append(out, name)
	}
	return out
}
