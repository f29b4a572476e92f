// Package handler implements the HTTP surface of the explorer.
//
// Every route is mounted below a configurable base path (default
// /local/dbus_explorer).
//
// # Pages
//
// The /app routes render HTML: the service list, a flattened view of every
// service, one service with its objects, and one object with its children
// and a reference of the bus type codes.
//
// # API
//
// The /api routes return the same records as JSON, plus a JSON or YAML
// export download.
//
// # Errors
//
// Invalid names and paths answer 400, an unreachable bus 503, services and
// objects that could not be found 404, and any other discovery failure 502.
// Pages answer with an HTML error page, the API with {error, details}.
//
// Middleware provides panic recovery and request logging.
package handler
