// Package app manages main application server.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	rice "github.com/GeertJohan/go.rice"
	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate rice embed-go

// App represents main application.
type App struct {
	Config    *Config
	Store     Store
	Watcher   *fsnotify.Watcher
	Templates *templateStore
	Listener  net.Listener
	Router    *mux.Router

	server *http.Server
}

// NewApp returns a new instance of App from Config. The Store is
// constructed by the caller and must outlive the App.
func NewApp(store Store, cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	a := &App{
		Config: cfg,
		Store:  store,
	}
	// Setup Watcher
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	a.Watcher = w
	// Setup Listener
	ln, err := newListener(cfg.Server)
	if err != nil {
		return nil, err
	}
	a.Listener = ln

	// Templates
	box := rice.MustFindBox("../templates")
	a.Templates = newTemplateStore("base", "index")
	if err := a.Templates.Load(box); err != nil {
		return nil, err
	}

	// Setup Router
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/", a.indexHandler).Methods("GET")
	r.HandleFunc("/api/hello", a.helloHandler).Methods("GET")
	r.HandleFunc("/api/greet/{name}", a.greetHandler).Methods("GET")
	r.HandleFunc("/api/echo", a.echoHandler).Methods("POST")
	r.HandleFunc("/health", a.healthHandler).Methods("GET")
	// Static file handler
	fsHandler := http.StripPrefix(
		"/static",
		http.FileServer(rice.MustFindBox("../static").HTTPBox()),
	)
	r.PathPrefix("/static/").Handler(fsHandler).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(a.notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(a.methodNotAllowedHandler)
	a.Router = r

	a.server = &http.Server{Handler: a.Handler()}
	return a, nil
}

// Handler returns the Router wrapped with access logging, panic recovery
// and request ID middleware.
func (a *App) Handler() http.Handler {
	h := handlers.CombinedLoggingHandler(log.StandardLogger().Writer(), a.Router)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(log.StandardLogger()),
	)(h)
	return requestID(h)
}

// Run watches the template directory and starts the server.
func (a *App) Run() error {
	if err := a.Watcher.Add("templates"); err != nil {
		log.Warnf("not watching templates: %s", err)
	}
	go startWatcher(a)
	err := a.server.Serve(a.Listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for in-flight requests until ctx
// expires. The Store is closed by the caller afterwards.
func (a *App) Shutdown(ctx context.Context) error {
	defer a.Watcher.Close()
	return a.server.Shutdown(ctx)
}

func newListener(cfg *ServerConfig) (net.Listener, error) {
	return net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
}

// startWatcher reloads templates whenever files in the watched directory
// change.
func startWatcher(a *App) {
	box := rice.MustFindBox("../templates")
	for {
		select {
		case e, ok := <-a.Watcher.Events:
			if !ok {
				return
			}
			if e.Op.Has(fsnotify.Write) || e.Op.Has(fsnotify.Create) {
				log.Debugf("template change detected: %s", e.Name)
				if err := a.Templates.Load(box); err != nil {
					log.Error(err)
				}
			}
		case err, ok := <-a.Watcher.Errors:
			if !ok {
				return
			}
			log.Error(err)
		}
	}
}

func (a *App) render(name string, w http.ResponseWriter, ctx interface{}) {
	buf, err := a.Templates.Exec(name, ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, err = buf.WriteTo(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// writeJSON writes v as a JSON response body. HTML escaping is disabled so
// caller-supplied strings pass through byte-for-byte.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		err := fmt.Errorf("error encoding response: %w", err)
		log.Error(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}

// HTTP handler for /
func (a *App) indexHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("/")
	views, err := a.Store.IncViews(HomePage)
	if err != nil {
		// The page renders regardless, showing a count of 0.
		log.Error(fmt.Errorf("error incrementing homepage views: %w", err))
		views = 0
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ctx := &struct {
		Service string
		Views   int64
	}{
		Service: a.Config.Service.DisplayName,
		Views:   views,
	}
	a.render("index", w, ctx)
}

// HTTP handler for /api/hello
func (a *App) helloHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("/api/hello")
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Hello from %s!", a.Config.Service.DisplayName),
	})
}

// HTTP handler for /api/greet/name
func (a *App) greetHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	log.Printf("/api/greet/%s", name)
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Hello, %s!", name),
	})
}

// HTTP handler for /api/echo
func (a *App) echoHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("/api/echo")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		err := fmt.Errorf("error reading request body: %w", err)
		log.Error(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// HTTP handler for /health
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("/health")
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: a.Config.Service.Name,
	})
}

func (a *App) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	log.Debugf("no route for %s %s", r.Method, r.URL.Path)
	http.NotFound(w, r)
}

func (a *App) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	log.Debugf("method %s not allowed for %s", r.Method, r.URL.Path)
	if allow := a.allowedMethods(r); len(allow) > 0 {
		w.Header().Set("Allow", strings.Join(allow, ", "))
	}
	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// allowedMethods finds which verbs the requested path accepts by
// re-matching it against every registered route.
func (a *App) allowedMethods(r *http.Request) []string {
	var methods []string
	a.Router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		verbs, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, verb := range verbs {
			req := r.Clone(r.Context())
			req.Method = verb
			var m mux.RouteMatch
			if route.Match(req, &m) {
				methods = append(methods, verb)
			}
		}
		return nil
	})
	return methods
}
