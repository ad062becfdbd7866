package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/designer/internal/asset"
	"github.com/inamate/designer/internal/auth"
	"github.com/inamate/designer/internal/cache"
	"github.com/inamate/designer/internal/collab"
	"github.com/inamate/designer/internal/config"
	"github.com/inamate/designer/internal/db"
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/export"
	mw "github.com/inamate/designer/internal/middleware"
	"github.com/inamate/designer/internal/project"
	"github.com/inamate/designer/internal/raster"
)

// Playground project allows anonymous access
const playgroundProjectID = "proj_playground"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	queries := db.New(pool)

	var thumbs cache.Cache = cache.NewNullCache()
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, "designer")
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		thumbs = rc
		slog.Info("thumbnail cache enabled", "backend", "redis")
	}
	defer thumbs.Close()

	store, err := asset.NewStore(cfg.AssetDir)
	if err != nil {
		return err
	}
	resolver := asset.NewResolver(store, raster.DefaultFonts())

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(queries, cfg.DefaultDPI)
	projectHandler := project.NewHandler(projectService)

	// The playground is never persisted.
	docLoader := func(ctx context.Context, projectID string) (*document.Document, error) {
		if projectID == playgroundProjectID {
			return document.NewSampleDocument("Playground"), nil
		}
		return projectService.LatestDocument(ctx, projectID)
	}
	docSaver := func(ctx context.Context, projectID string, doc *document.Document) error {
		if projectID == playgroundProjectID {
			return nil
		}
		return projectService.SaveDocument(ctx, projectID, doc)
	}

	hub := collab.NewHub(docLoader, docSaver)
	go hub.Run()

	assetHandler := asset.NewHandler(store)
	exportHandler := export.NewHandler(
		export.NewService(resolver, thumbs, cfg.ThumbnailSize),
		projectService,
		hub,
	)

	r := mux.NewRouter()

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Asset endpoints (public, used by playground and authenticated users)
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Export of a posted document (public, used by playground)
	r.HandleFunc("/export", exportHandler.Export).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	api.HandleFunc("/projects/{projectId}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/projects/{projectId}", projectHandler.Delete).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/invite", projectHandler.Invite).Methods("POST")
	api.HandleFunc("/projects/{projectId}/members", projectHandler.ListMembers).Methods("GET")
	api.HandleFunc("/projects/{projectId}/members/{userId}", projectHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/snapshots/latest", projectHandler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/projects/{projectId}/snapshots", projectHandler.SaveSnapshot).Methods("POST")
	api.HandleFunc("/projects/{projectId}/export", exportHandler.ExportProject).Methods("GET")
	api.HandleFunc("/projects/{projectId}/thumbnail", exportHandler.Thumbnail).Methods("GET")

	// WebSocket endpoint
	ws := &wsHandler{
		hub:            hub,
		auth:           authService,
		projects:       projectService,
		originPatterns: cfg.OriginPatterns(),
	}
	r.Handle("/ws/project/{projectId}", ws)

	addr := fmt.Sprintf(":%d", cfg.Port)
	// Wrapped outside the router so preflight requests are answered
	// before route matching.
	handler := mw.Recovery(mw.Logger(mw.CORS(cfg.Origins())(r)))
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty documents
		slog.Info("saving all documents...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}

type wsHandler struct {
	hub            *collab.Hub
	auth           *auth.Service
	projects       *project.Service
	originPatterns []string
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	var userID string
	var displayName string
	readOnly := false

	if projectID == playgroundProjectID {
		// Anonymous user for playground
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Auth via query param for real projects
		token, err := auth.TokenFromRequest(r)
		if err != nil {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err = h.auth.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		canEdit, err := h.projects.CanEdit(r.Context(), projectID, userID)
		if err != nil {
			if errors.Is(err, project.ErrNotMember) {
				http.Error(w, "not a project member", http.StatusForbidden)
				return
			}
			slog.Error("check membership", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		readOnly = !canEdit

		user, err := h.auth.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(h.hub, conn, userID, displayName, projectID, clientID)
	client.ReadOnly = readOnly

	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
