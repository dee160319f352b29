// Package server implements the preview server: it serves templates with
// their comments rewritten into visible HTML comments and live-reloads
// connected browsers when template files change.
package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/sean-reed/django-render-comments/internal/config"
	"github.com/sean-reed/django-render-comments/internal/loader"
	"github.com/sean-reed/django-render-comments/internal/logging"
	"github.com/sean-reed/django-render-comments/internal/watcher"
)

// PreviewServer serves preprocessed templates with live reload.
type PreviewServer struct {
	config      *config.Config
	loader      *loader.Loader
	logger      logging.Logger
	httpServer  *http.Server
	fileWatcher *watcher.FileWatcher

	clients      map[*websocket.Conn]*client
	clientsMutex sync.RWMutex
	register     chan *client
	unregister   chan *websocket.Conn
	broadcast    chan []byte
}

// New creates a preview server. The caller decides the preprocessing gate
// through the config; the serve command forces debug on so the preview
// always shows comments.
func New(cfg *config.Config, logger logging.Logger) (*PreviewServer, error) {
	log := logger.WithComponent("server")

	fw, err := watcher.NewFileWatcher(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, logger)
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	s := &PreviewServer{
		config:      cfg,
		loader:      loader.New(cfg, logger),
		logger:      log,
		fileWatcher: fw,
		clients:     make(map[*websocket.Conn]*client),
		register:    make(chan *client),
		unregister:  make(chan *websocket.Conn),
		broadcast:   make(chan []byte, 16),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/templates/", s.handleTemplate)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

// Start runs the websocket hub, the file watcher, and the HTTP server. It
// blocks until the server stops.
func (s *PreviewServer) Start(ctx context.Context) error {
	go s.runWebSocketHub(ctx)

	s.fileWatcher.AddFilter(watcher.ExtensionFilter(s.config.Templates.Extensions))
	s.fileWatcher.AddFilter(watcher.NoGitFilter)
	s.fileWatcher.AddFilter(watcher.NoBackupFilter)
	s.fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		s.logger.Info(ctx, "templates changed, reloading clients", "count", len(events))
		s.broadcast <- []byte(`{"type":"reload"}`)
		return nil
	})
	for _, dir := range s.config.Templates.Dirs {
		if err := s.fileWatcher.AddRecursive(dir); err != nil {
			s.logger.Warn(ctx, err, "failed to watch template dir", "dir", dir)
		}
	}
	if err := s.fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server and the watcher gracefully.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	if err := s.fileWatcher.Stop(); err != nil {
		s.logger.Warn(ctx, err, "stopping file watcher")
	}
	return s.httpServer.Shutdown(ctx)
}

// handleIndex lists every discovered template as a preview link.
func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var names []string
	err := s.loader.Walk(r.Context(), func(_, name string) error {
		names = append(names, name)
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<!doctype html><html><head><meta charset=\"utf-8\"/>")
	b.WriteString("<title>rendercomments preview</title></head><body>")
	b.WriteString("<h2>Templates</h2><ul>")
	for _, name := range names {
		escaped := html.EscapeString(name)
		fmt.Fprintf(&b, `<li><a href="/templates/%s">%s</a></li>`, escaped, escaped)
	}
	b.WriteString("</ul>")
	b.WriteString(reloadScript)
	b.WriteString("</body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// handleTemplate serves one preprocessed template.
func (s *PreviewServer) handleTemplate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/templates/")

	contents, err := s.loader.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, loader.ErrTemplateNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error(r.Context(), err, "failed to load template", "template", name)
		http.Error(w, "failed to load template", http.StatusInternalServerError)
		return
	}

	if path.Ext(name) == ".html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		contents = injectReloadScript(contents)
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = w.Write([]byte(contents))
}

// reloadScript reconnects-and-reloads the page when the hub broadcasts a
// change notification.
const reloadScript = `<script>
(function() {
	var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
	ws.onmessage = function(ev) {
		var msg = JSON.parse(ev.data);
		if (msg.type === "reload") { location.reload(); }
	};
})();
</script>`

// injectReloadScript places the live-reload script before </body> when one
// exists, appending otherwise.
func injectReloadScript(contents string) string {
	lower := strings.ToLower(contents)
	if idx := strings.LastIndex(lower, "</body>"); idx >= 0 {
		return contents[:idx] + reloadScript + contents[idx:]
	}
	return contents + reloadScript
}
