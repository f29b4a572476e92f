package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"dbusexplorer/internal/codec"
	"dbusexplorer/internal/domain"
)

// ListServices returns the sorted public bus names
func (h *ExplorerHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	names, err := h.explorer.ListServiceNames(r.Context())
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, names, http.StatusOK)
}

// Discover walks every service matching the optional filter query
func (h *ExplorerHandler) Discover(w http.ResponseWriter, r *http.Request) {
	services, err := h.explorer.DiscoverAll(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	writeJSON(w, services, http.StatusOK)
}

// GetService walks one service
func (h *ExplorerHandler) GetService(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	record, err := h.explorer.DiscoverOne(r.Context(), name)
	if err != nil {
		writeAPIError(w, r, err)
		return
	}
	if len(record.Objects) == 0 && record.Error != nil {
		writeAPIError(w, r, domain.NewFault(domain.KindNotFound, "Service not found", record.Error).At(name, ""))
		return
	}

	writeJSON(w, record, http.StatusOK)
}

// GetObject returns one object and its direct children
func (h *ExplorerHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	view, err := h.describe(r, r.PathValue("name"), objectPath(r))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	writeJSON(w, view, http.StatusOK)
}

// Export downloads a discovery of the bus as JSON or YAML
func (h *ExplorerHandler) Export(w http.ResponseWriter, r *http.Request) {
	exporter, err := codec.ExporterFor(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, "Invalid input provided", err.Error(), http.StatusBadRequest)
		return
	}

	services, err := h.explorer.DiscoverAll(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		writeAPIError(w, r, err)
		return
	}

	// Encode fully before writing headers so a failure still yields an error
	var buf bytes.Buffer
	if err := exporter.Export(services, &buf); err != nil {
		writeError(w, "Export failed", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=dbus-services.%s", exporter.Format()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
