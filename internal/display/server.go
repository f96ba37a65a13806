// Package display serves rendered figure pages over HTTP for interactive
// viewing.
package display

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/matejmatuska/audio-stego/internal/chart"
	"github.com/matejmatuska/audio-stego/internal/httputil"
	"github.com/matejmatuska/audio-stego/internal/monitoring"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<ul>
{{- range .Pages}}
<li><a href="/figures/{{.Name}}">{{.Name}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

// Server serves a fixed set of pages. The pages are not modified after
// NewServer returns.
type Server struct {
	title string
	pages []chart.Page
}

// NewServer returns a server for pages.
func NewServer(title string, pages []chart.Page) *Server {
	return &Server{title: title, pages: pages}
}

type figureInfo struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// Handler returns the HTTP routes: an index at /, each page at
// /figures/<name> and the figure list at /api/figures.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/figures/", s.handleFigure)
	mux.HandleFunc("/api/figures", s.handleList)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if httputil.MethodNotAllowed(w, r) {
		return
	}
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	var buf strings.Builder
	if err := indexTemplate.Execute(&buf, struct {
		Title string
		Pages []chart.Page
	}{s.title, s.pages}); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render error: %v", err))
		return
	}
	httputil.WriteHTML(w, http.StatusOK, []byte(buf.String()))
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	if httputil.MethodNotAllowed(w, r) {
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/figures/")
	for _, p := range s.pages {
		if p.Name == name {
			httputil.WriteHTML(w, http.StatusOK, p.HTML)
			return
		}
	}
	httputil.NotFound(w, fmt.Sprintf("no figure %q", name))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if httputil.MethodNotAllowed(w, r) {
		return
	}
	out := make([]figureInfo, len(s.pages))
	for i, p := range s.pages {
		out[i] = figureInfo{Name: p.Name, Title: p.Title, URL: "/figures/" + p.Name}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// Serve serves on ln until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		monitoring.Logf("HTTP server listening on %s", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// URL returns the browser address of a listener.
func URL(ln net.Listener) string {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		host := "localhost"
		if !addr.IP.IsUnspecified() && !addr.IP.IsLoopback() {
			host = addr.IP.String()
		}
		return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(addr.Port)))
	}
	return "http://" + ln.Addr().String()
}

// browserCommands maps GOOS to the program that opens a URL in the default
// browser, followed by its leading arguments.
var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// browserCommand returns the command line opening url on goos.
func browserCommand(goos, url string) ([]string, error) {
	argv, ok := browserCommands[goos]
	if !ok {
		return nil, fmt.Errorf("no browser launcher for %s", goos)
	}
	return append(slices.Clone(argv), url), nil
}

// OpenBrowser starts the default browser on url without waiting for it.
// Failures are logged; the server keeps running either way.
func OpenBrowser(url string) {
	argv, err := browserCommand(runtime.GOOS, url)
	if err == nil {
		err = exec.Command(argv[0], argv[1:]...).Start()
	}
	if err != nil {
		monitoring.Logf("open %s in a browser yourself: %v", url, err)
	}
}
