package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"dbusexplorer/internal/domain"
)

// Explorer is the discovery surface the handlers need
type Explorer interface {
	ListServiceNames(ctx context.Context) ([]string, error)
	DiscoverAll(ctx context.Context, filter string) ([]domain.ServiceRecord, error)
	DiscoverOne(ctx context.Context, name string) (domain.ServiceRecord, error)
	DescribeObject(ctx context.Context, name, path string) (*domain.ObjectView, error)
}

// ExplorerHandler serves the HTML pages and the JSON API
type ExplorerHandler struct {
	explorer Explorer
	basePath string
	pages    *pageSet
}

// NewExplorerHandler creates a handler serving every route below basePath
func NewExplorerHandler(explorer Explorer, basePath string) (*ExplorerHandler, error) {
	basePath = strings.TrimSuffix(basePath, "/")

	pages, err := newPageSet(basePath)
	if err != nil {
		return nil, err
	}

	return &ExplorerHandler{
		explorer: explorer,
		basePath: basePath,
		pages:    pages,
	}, nil
}

// Register adds all routes to mux
func (h *ExplorerHandler) Register(mux *http.ServeMux) {
	base := h.basePath

	// HTML pages
	mux.HandleFunc("GET "+base+"/app", h.LandingPage)
	mux.HandleFunc("GET "+base+"/app/{$}", h.LandingPage)
	mux.HandleFunc("GET "+base+"/app/all", h.AllServicesPage)
	mux.HandleFunc("GET "+base+"/app/service/{name}", h.ServicePage)
	mux.HandleFunc("GET "+base+"/app/service/{name}/{path...}", h.ObjectPage)

	// JSON API
	mux.HandleFunc("GET "+base+"/api/services", h.ListServices)
	mux.HandleFunc("GET "+base+"/api/discover", h.Discover)
	mux.HandleFunc("GET "+base+"/api/services/{name}", h.GetService)
	mux.HandleFunc("GET "+base+"/api/services/{name}/objects/{path...}", h.GetObject)
	mux.HandleFunc("GET "+base+"/api/export", h.Export)
}

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps an error to the HTTP status and the public message
func statusFor(err error) (int, string) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest, "Invalid input provided"
	case domain.KindConnection:
		return http.StatusServiceUnavailable, "D-Bus service unavailable"
	case domain.KindNotFound:
		var f *domain.Fault
		if errors.As(err, &f) {
			return http.StatusNotFound, f.Message
		}
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusBadGateway, "Failed to introspect service"
	}
}

// objectPath turns the {path...} wildcard into an absolute object path
func objectPath(r *http.Request) string {
	rest := strings.Trim(r.PathValue("path"), "/")
	return domain.JoinPath(domain.RootPath, rest)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logrus.Errorf("failed to encode JSON: %v", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeJSON(w, ErrorResponse{
		Error:   error,
		Details: details,
	}, statusCode)
}

// writeAPIError logs err and answers with the mapped status
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	logRequestError(r, status, err)
	writeError(w, message, err.Error(), status)
}

func logRequestError(r *http.Request, status int, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"status":     status,
		"request_id": RequestID(r.Context()),
	})
	if status >= http.StatusInternalServerError {
		entry.Errorf("request failed: %v", err)
	} else {
		entry.Infof("request rejected: %v", err)
	}
}
