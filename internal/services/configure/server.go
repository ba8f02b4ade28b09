// Package configure hosts the browser-based workflow configuration builder.
//
// Each browser session edits one in-memory workflow configuration; the
// artifact files are generated from it on demand and can be downloaded
// individually or as a bundle.
package configure

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"

	apperrors "github.com/CirroBioApps/cirro-configure-workflow/internal/platform/errors"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/platform/timeouts"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/storage"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/storage/sqlite"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/session"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/workflow"
)

//go:embed static
var assetsFS embed.FS

// Config defines the inputs for the configuration builder server.
type Config struct {
	HTTPAddr string
	// DBPath locates the SQLite draft database. Empty disables autosave.
	DBPath string
	// Strict enables the stricter cross-reference checks at export time.
	Strict bool
}

// Server hosts the configuration builder HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	drafts     storage.DraftStore
}

type handler struct {
	sessions   *session.Store
	drafts     storage.DraftStore
	strictness workflow.Strictness

	mu       sync.Mutex
	draftIDs map[string]string
}

// NewHandler assembles the HTTP routes. A nil draft store disables
// autosave.
func NewHandler(config Config, drafts storage.DraftStore) http.Handler {
	h := &handler{
		sessions: session.NewStore(),
		drafts:   drafts,
		draftIDs: make(map[string]string),
	}
	if config.Strict {
		h.strictness = workflow.Strict
	}

	mux := http.NewServeMux()
	staticFS, err := fs.Sub(assetsFS, "static")
	if err == nil {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	mux.HandleFunc("/", h.handleWorkflowPage)
	mux.HandleFunc("/workflow", h.handleWorkflowSave)

	mux.HandleFunc("/params", h.handleParams)
	mux.HandleFunc("/params/add", h.handleParamAdd)
	mux.HandleFunc("/params/remove", h.handleParamRemove)

	mux.HandleFunc("/outputs", h.handleOutputs)
	mux.HandleFunc("/outputs/add", h.handleOutputAdd)
	mux.HandleFunc("/outputs/remove", h.handleOutputRemove)
	mux.HandleFunc("/outputs/columns/add", h.handleColumnAdd)
	mux.HandleFunc("/outputs/columns/remove", h.handleColumnRemove)

	mux.HandleFunc("/artifacts", h.handleArtifactsPage)
	mux.HandleFunc("/download/all", h.handleDownloadAll)
	mux.HandleFunc("/download/", h.handleDownload)
	mux.HandleFunc("/upload", h.handleUpload)

	mux.HandleFunc("/undo", h.handleUndo)
	mux.HandleFunc("/redo", h.handleRedo)
	mux.HandleFunc("/refresh", h.handleRefresh)
	mux.HandleFunc("/logout", h.handleLogout)

	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

// NewServer builds a configured builder server. Without a database path the
// server runs with autosave disabled.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	var drafts storage.DraftStore
	if strings.TrimSpace(config.DBPath) != "" {
		store, err := sqlite.Open(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open draft store: %w", err)
		}
		drafts = store
	} else {
		log.Printf("no database path configured; drafts will not be saved")
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(config, drafts),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
		drafts:     drafts,
	}, nil
}

// ListenAndServe runs the HTTP server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("configure server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("configuration builder listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.drafts != nil {
		if err := s.drafts.Close(); err != nil {
			log.Printf("close draft store: %v", err)
		}
	}
}

// writeError maps an application error onto an HTTP status response.
// Validation failures are user input, not server faults.
func writeError(w http.ResponseWriter, err error) {
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		err = apperrors.E(apperrors.KindInvalidInput, verr.Error())
	}
	http.Error(w, err.Error(), apperrors.HTTPStatus(err))
}

// requireMethod enforces the request method for a route.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}
