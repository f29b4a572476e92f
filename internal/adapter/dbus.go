package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	busInterface         = "org.freedesktop.DBus"
	introspectableMethod = "org.freedesktop.DBus.Introspectable.Introspect"
	listNamesMethod      = busInterface + ".ListNames"
	getNameOwnerMethod   = busInterface + ".GetNameOwner"
)

// Well-known error names returned by the bus daemon and by services
const (
	ErrNameAccessDenied     = "org.freedesktop.DBus.Error.AccessDenied"
	ErrNameUnknownMethod    = "org.freedesktop.DBus.Error.UnknownMethod"
	ErrNameUnknownInterface = "org.freedesktop.DBus.Error.UnknownInterface"
	ErrNameUnknownObject    = "org.freedesktop.DBus.Error.UnknownObject"
	ErrNameNameHasNoOwner   = "org.freedesktop.DBus.Error.NameHasNoOwner"
	ErrNameNoReply          = "org.freedesktop.DBus.Error.NoReply"
)

// DBusTransport implements Transport on top of a godbus connection
type DBusTransport struct {
	conn *dbus.Conn
}

// NewDBusTransport wraps an already established connection
func NewDBusTransport(conn *dbus.Conn) *DBusTransport {
	return &DBusTransport{conn: conn}
}

// NewDialer returns a Dialer that opens a private connection to the
// configured bus on every call
func NewDialer(cfg BusConfig) Dialer {
	return func(ctx context.Context) (Transport, error) {
		var (
			conn *dbus.Conn
			err  error
		)

		switch cfg.Kind {
		case BusSystem, "":
			conn, err = dbus.ConnectSystemBus(dbus.WithContext(ctx))
		case BusSession:
			conn, err = dbus.ConnectSessionBus(dbus.WithContext(ctx))
		case BusAddress:
			if cfg.Address == "" {
				return nil, fmt.Errorf("bus address is required for bus kind %q", cfg.Kind)
			}
			conn, err = dbus.Connect(cfg.Address, dbus.WithContext(ctx))
		default:
			return nil, fmt.Errorf("unknown bus kind %q", cfg.Kind)
		}
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to connect to %s bus", cfg.Kind)
		}

		logrus.Debugf("connected to %s bus", cfg.Kind)
		return NewDBusTransport(conn), nil
	}
}

// ListNames calls org.freedesktop.DBus.ListNames
func (t *DBusTransport) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	call := t.conn.BusObject().CallWithContext(ctx, listNamesMethod, 0)
	if err := call.Store(&names); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list D-Bus names")
	}
	return names, nil
}

// GetNameOwner calls org.freedesktop.DBus.GetNameOwner
func (t *DBusTransport) GetNameOwner(ctx context.Context, name string) (string, error) {
	var owner string
	call := t.conn.BusObject().CallWithContext(ctx, getNameOwnerMethod, 0, name)
	if err := call.Store(&owner); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get owner of %s", name)
	}
	return owner, nil
}

// Introspect calls org.freedesktop.DBus.Introspectable.Introspect on one
// object
func (t *DBusTransport) Introspect(ctx context.Context, service, path string) (string, error) {
	if !dbus.ObjectPath(path).IsValid() {
		return "", fmt.Errorf("invalid object path %q", path)
	}

	var xml string
	call := t.conn.Object(service, dbus.ObjectPath(path)).CallWithContext(ctx, introspectableMethod, 0)
	if err := call.Store(&xml); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to introspect %s %s", service, path)
	}
	return xml, nil
}

// Close closes the underlying connection
func (t *DBusTransport) Close() error {
	return t.conn.Close()
}

// ErrorName extracts the D-Bus error name carried by err, or "" when err did
// not come from an error reply
func ErrorName(err error) string {
	var value dbus.Error
	if errors.As(err, &value) {
		return value.Name
	}
	var ptr *dbus.Error
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Name
	}
	return ""
}
