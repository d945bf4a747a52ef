package api

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/loomworks/loom/internal/block"
	"github.com/loomworks/loom/internal/config"
	"github.com/loomworks/loom/internal/db"
	"github.com/loomworks/loom/internal/db/driver"
	"github.com/loomworks/loom/internal/events"
	"github.com/loomworks/loom/internal/reconcile"
	"github.com/loomworks/loom/internal/store"
	"github.com/loomworks/loom/internal/tools"
)

// Server is the loom API server. It owns the in-memory workflow state and
// flushes it to the project database after every mutation.
type Server struct {
	addr    string
	workDir string
	mux     *http.ServeMux
	logger  *slog.Logger

	loomConfig *config.Config

	publisher events.Publisher
	wsHandler *WSHandler

	blocks     *block.Registry
	tools      *tools.Registry
	workflows  *store.WorkflowStore
	subblocks  *store.SubBlockStore
	reconciler *reconcile.Reconciler

	database *db.DB
}

// Config holds server configuration.
type Config struct {
	Addr    string
	WorkDir string // Project directory (defaults to ".")
	Logger  *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:    ":3080",
		WorkDir: ".",
		Logger:  slog.Default(),
	}
}

// New creates a new API server. It loads the project configuration, opens
// the project database, restores persisted state, and imports workflow files
// from the workflows directory.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "."
	}

	configPath := filepath.Join(workDir, config.LoomDir, config.ConfigFileName)
	loomCfg, err := config.LoadFrom(configPath)
	if err != nil {
		logger.Warn("failed to load loom config, using defaults", "error", err)
		loomCfg = config.Default()
	}

	addr := cfg.Addr
	if addr == "" {
		addr = loomCfg.Server.Addr
	}

	pub := events.NewMemoryPublisher()

	database, err := openDatabase(loomCfg, workDir)
	if err != nil {
		return nil, err
	}

	workflows := store.NewWorkflowStore(pub)
	subblocks := store.NewSubBlockStore(pub)

	s := &Server{
		addr:       addr,
		workDir:    workDir,
		mux:        http.NewServeMux(),
		logger:     logger,
		loomConfig: loomCfg,
		publisher:  pub,
		blocks:     block.NewRegistry(),
		tools:      tools.NewRegistry(),
		workflows:  workflows,
		subblocks:  subblocks,
		reconciler: reconcile.New(workflows, subblocks, loomCfg.AutoFillEnvVars),
		database:   database,
	}

	if err := s.restore(context.Background()); err != nil {
		logger.Warn("failed to restore persisted state", "error", err)
	}
	s.importWorkflows()

	s.wsHandler = NewWSHandler(pub, logger)

	s.registerRoutes()
	return s, nil
}

func openDatabase(cfg *config.Config, workDir string) (*db.DB, error) {
	if cfg.Storage.Dialect == string(driver.DialectPostgres) {
		return db.OpenWithDialect(cfg.Storage.DSN, driver.DialectPostgres)
	}
	dsn := cfg.Storage.DSN
	if dsn == "" {
		dsn = cfg.DatabasePath(workDir)
	}
	return db.Open(dsn)
}

// restore loads persisted workflows and sub-block state into the stores.
func (s *Server) restore(ctx context.Context) error {
	loaded, err := s.database.LoadWorkflows(ctx)
	if err != nil {
		return err
	}
	for _, wf := range loaded {
		s.workflows.Restore(wf)
	}

	snap, err := s.database.LoadSubBlockSnapshot(ctx)
	if err != nil {
		return err
	}
	s.subblocks.Restore(snap)

	if len(loaded) > 0 {
		s.logger.Info("restored workflows", "count", len(loaded))
	}
	return nil
}

// importWorkflows imports workflow YAML files from the workflows directory.
func (s *Server) importWorkflows() {
	dir := s.loomConfig.WorkflowsPath(s.workDir)
	result, err := s.workflows.ImportDir(dir, s.blocks)
	if err != nil {
		s.logger.Warn("workflow import failed", "dir", dir, "error", err)
		return
	}
	if result.Imported > 0 {
		s.logger.Info("imported workflow files", "count", result.Imported, "dir", dir)
	}
}

// persist flushes the current store state to the database.
func (s *Server) persist(ctx context.Context) {
	for _, wf := range s.workflows.Snapshot() {
		if err := s.database.SaveWorkflow(ctx, wf); err != nil {
			s.logger.Error("failed to persist workflow", "workflow", wf.ID, "error", err)
		}
	}
	if err := s.database.SaveSubBlockSnapshot(ctx, s.subblocks.Snapshot()); err != nil {
		s.logger.Error("failed to persist sub-block state", "error", err)
	}
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}

// StartContext starts the API server with context for graceful shutdown.
func (s *Server) StartContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	go func() {
		<-ctx.Done()
		s.persist(context.Background())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", s.addr)
	return server.ListenAndServe()
}

// Close releases server resources.
func (s *Server) Close() error {
	s.publisher.Close()
	return s.database.Close()
}

// Handler returns the server's HTTP handler (for testing).
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Publisher returns the event publisher.
func (s *Server) Publisher() events.Publisher {
	return s.publisher
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// CORS middleware wrapper
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			h(w, r)
		}
	}

	// Health check
	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))

	// Block registry (toolbar)
	s.mux.HandleFunc("GET /api/blocks", cors(s.handleListBlocks))
	s.mux.HandleFunc("GET /api/blocks/categories", cors(s.handleListCategories))

	// Tools
	s.mux.HandleFunc("GET /api/tools", cors(s.handleListTools))
	s.mux.HandleFunc("GET /api/tools/{id}", cors(s.handleGetTool))

	// Workflows
	s.mux.HandleFunc("GET /api/workflows", cors(s.handleListWorkflows))
	s.mux.HandleFunc("POST /api/workflows", cors(s.handleCreateWorkflow))
	s.mux.HandleFunc("GET /api/workflows/{id}", cors(s.handleGetWorkflow))
	s.mux.HandleFunc("DELETE /api/workflows/{id}", cors(s.handleDeleteWorkflow))

	// Canvas blocks
	s.mux.HandleFunc("POST /api/workflows/{id}/blocks", cors(s.handleAddBlock))
	s.mux.HandleFunc("DELETE /api/workflows/{id}/blocks/{blockId}", cors(s.handleRemoveBlock))
	s.mux.HandleFunc("PUT /api/workflows/{id}/layout", cors(s.handleSaveLayout))

	// Sub-block values
	s.mux.HandleFunc("GET /api/workflows/{id}/blocks/{blockId}/values/{subBlockId}", cors(s.handleGetValue))
	s.mux.HandleFunc("PUT /api/workflows/{id}/blocks/{blockId}/values/{subBlockId}", cors(s.handleSetValue))
	s.mux.HandleFunc("POST /api/workflows/{id}/blocks/{blockId}/model", cors(s.handleModelChanged))

	// Settings
	s.mux.HandleFunc("GET /api/settings", cors(s.handleGetSettings))
	s.mux.HandleFunc("PUT /api/settings", cors(s.handleUpdateSettings))

	// WebSocket event stream
	s.mux.Handle("GET /ws", s.wsHandler)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{"status": "ok"})
}
