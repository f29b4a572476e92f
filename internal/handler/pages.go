package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"dbusexplorer/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"landing", "all", "service", "object"}

// crumb is one entry of the navigation bar. The last one has no URL.
type crumb struct {
	Label string
	URL   string
}

type pageData struct {
	Title  string
	Crumbs []crumb
	Data   interface{}
}

type errorData struct {
	Status  int
	Message string
}

type objectLink struct {
	Service string
	Object  domain.ObjectRecord
}

type pageSet struct {
	basePath string
	pages    map[string]*template.Template
	errors   *template.Template
}

func newPageSet(basePath string) (*pageSet, error) {
	ps := &pageSet{
		basePath: basePath,
		pages:    make(map[string]*template.Template, len(pageNames)),
	}

	funcs := template.FuncMap{
		"appURL":     ps.appURL,
		"serviceURL": ps.serviceURL,
		"objectURL":  ps.objectURL,
		"args":       formatArgs,
		"summary":    interfaceSummary,
		"link": func(service string, obj domain.ObjectRecord) objectLink {
			return objectLink{Service: service, Object: obj}
		},
	}

	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s page", name)
		}
		ps.pages[name] = tmpl
	}

	errTmpl, err := template.New("error").Funcs(funcs).ParseFS(templateFS, "templates/error.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse error page")
	}
	ps.errors = errTmpl

	return ps, nil
}

func (ps *pageSet) appURL(sub string) string {
	if sub == "" {
		return ps.basePath + "/app"
	}
	return ps.basePath + "/app/" + sub
}

func (ps *pageSet) serviceURL(service string) string {
	return ps.appURL("service/" + url.PathEscape(service))
}

// objectURL links an object page; the root object maps to a trailing slash
func (ps *pageSet) objectURL(service, path string) string {
	return ps.serviceURL(service) + "/" + strings.TrimPrefix(path, "/")
}

// home is the first crumb of every page
func (ps *pageSet) home() crumb {
	return crumb{Label: "Home", URL: ps.appURL("")}
}

// objectCrumbs links every ancestor of path and ends with its last segment
func (ps *pageSet) objectCrumbs(service, path string) []crumb {
	crumbs := []crumb{ps.home(), {Label: service, URL: ps.serviceURL(service)}}
	if path == domain.RootPath {
		return append(crumbs, crumb{Label: "/"})
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	current := ""
	for i, part := range parts {
		current += "/" + part
		if i == len(parts)-1 {
			crumbs = append(crumbs, crumb{Label: part})
		} else {
			crumbs = append(crumbs, crumb{Label: part, URL: ps.objectURL(service, current)})
		}
	}
	return crumbs
}

func (ps *pageSet) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := ps.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		logrus.Errorf("failed to render %s page: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes(), http.StatusOK)
}

func (ps *pageSet) renderError(w http.ResponseWriter, status int, message string) {
	var buf bytes.Buffer
	if err := ps.errors.ExecuteTemplate(&buf, "error", errorData{Status: status, Message: message}); err != nil {
		logrus.Errorf("failed to render error page: %v", err)
		http.Error(w, message, status)
		return
	}
	writeHTML(w, buf.Bytes(), status)
}

func writeHTML(w http.ResponseWriter, body []byte, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// formatArgs renders "name: type" pairs, using "_" for unnamed arguments
func formatArgs(args []domain.Argument) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		name := a.Name
		if name == "" {
			name = "_"
		}
		parts = append(parts, name+": "+a.Type)
	}
	return strings.Join(parts, ", ")
}

func interfaceSummary(obj domain.ObjectRecord) string {
	total := len(obj.Interfaces)
	if total == 0 {
		return ""
	}
	noun := "interfaces"
	if total == 1 {
		noun = "interface"
	}

	withContent := obj.InterfacesWithContent()
	switch {
	case withContent == total:
		return fmt.Sprintf("(%d %s)", total, noun)
	case withContent > 0:
		return fmt.Sprintf("(%d of %d %s with content)", withContent, total, noun)
	default:
		return fmt.Sprintf("(%d %s, no content)", total, noun)
	}
}

// LandingPage lists every public service name
func (h *ExplorerHandler) LandingPage(w http.ResponseWriter, r *http.Request) {
	names, err := h.explorer.ListServiceNames(r.Context())
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	h.pages.render(w, "landing", pageData{
		Title:  "Home",
		Crumbs: []crumb{h.pages.home()},
		Data:   names,
	})
}

// AllServicesPage walks the whole bus and renders every object
func (h *ExplorerHandler) AllServicesPage(w http.ResponseWriter, r *http.Request) {
	services, err := h.explorer.DiscoverAll(r.Context(), "")
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	h.pages.render(w, "all", pageData{
		Title:  "All Services and Objects",
		Crumbs: []crumb{h.pages.home(), {Label: "All Services"}},
		Data:   services,
	})
}

// ServicePage lists the objects of one service
func (h *ExplorerHandler) ServicePage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	record, err := h.explorer.DiscoverOne(r.Context(), name)
	if err == nil && len(record.Objects) == 0 && record.Error != nil {
		err = domain.NewFault(domain.KindNotFound, "Service not found", record.Error).At(name, "")
	}
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	h.pages.render(w, "service", pageData{
		Title:  name,
		Crumbs: []crumb{h.pages.home(), {Label: name}},
		Data:   record,
	})
}

// ObjectPage shows one object with links to its children
func (h *ExplorerHandler) ObjectPage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	path := objectPath(r)

	view, err := h.describe(r, name, path)
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	h.pages.render(w, "object", pageData{
		Title:  name + " " + path,
		Crumbs: h.pages.objectCrumbs(name, path),
		Data:   view,
	})
}

// describe fetches an object view and turns an object that could not be
// introspected into a not found error
func (h *ExplorerHandler) describe(r *http.Request, name, path string) (*domain.ObjectView, error) {
	view, err := h.explorer.DescribeObject(r.Context(), name, path)
	if err != nil {
		return nil, err
	}
	if view.Object.Failed() {
		return nil, domain.NewFault(domain.KindNotFound, "Object not found", view.Object.Error).At(name, path)
	}
	return view, nil
}

func (h *ExplorerHandler) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	logRequestError(r, status, err)
	h.pages.renderError(w, status, message)
}
