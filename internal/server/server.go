package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	mwecho "github.com/labstack/echo/v4/middleware"
	mwsvc "winsbygroup.com/keyserver/internal/middleware"

	"winsbygroup.com/keyserver/internal/config"
	"winsbygroup.com/keyserver/internal/demodata"
	"winsbygroup.com/keyserver/internal/export"
	"winsbygroup.com/keyserver/internal/keycodec"
	"winsbygroup.com/keyserver/internal/license"
	"winsbygroup.com/keyserver/internal/sqlite"

	adminhttp "winsbygroup.com/keyserver/internal/http/admin"
	clienthttp "winsbygroup.com/keyserver/internal/http/client"
	webhttp "winsbygroup.com/keyserver/internal/http/web"
)

// Errors for missing required settings
var (
	ErrSecretKeyRequired   = errors.New("SECRET_KEY environment variable is required")
	ErrAdminAPIKeyRequired = errors.New("ADMIN_API_KEY environment variable is required")
)

type Server struct {
	Echo *echo.Echo
	HTTP *http.Server
	DB   *sqlx.DB
}

func Build(cfg *config.Config) (*Server, error) {
	//
	// Validate required settings
	//
	if cfg.SecretKey == "" {
		return nil, ErrSecretKeyRequired
	}
	if cfg.AdminAPIKey == "" {
		return nil, ErrAdminAPIKeyRequired
	}

	//
	// Database
	//
	isNewDB := false
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		isNewDB = true
		log.Printf("Creating database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	} else {
		log.Printf("Opening database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	}
	db, err := sqlx.Connect("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// WAL mode is only required once after creating the database, but
	// doesn't hurt to set it each time
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, err
	}

	if err := sqlite.RunMigrations(db.DB); err != nil {
		db.Close()
		return nil, err
	}

	codec := keycodec.New(cfg.SecretKey)

	// Load demo data if requested and database is new
	if cfg.DemoMode && isNewDB {
		if err := demodata.Load(context.Background(), db, codec); err != nil {
			db.Close()
			return nil, errors.New("failed to load demo data: " + err.Error())
		}
		log.Print("Demo data loaded")
	}

	//
	// Domain services
	//
	licenseSvc := license.NewService(db, codec)
	exportSvc := export.NewService(db, cfg.DBPath)
	sessions := mwsvc.NewMemorySessionStore()

	//
	// Handlers
	//
	clientHandler := clienthttp.NewHandler(licenseSvc)

	adminSvc := adminhttp.NewService(licenseSvc, exportSvc)
	adminHandler := adminhttp.NewHandler(adminSvc)

	webHandler := webhttp.NewHandler(adminSvc, sessions, cfg.AdminAPIKey, cfg.SecureCookie)

	//
	// Echo
	//
	e := echo.New()
	e.HideBanner = true

	// Health endpoints
	e.GET("/livez", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/readyz", func(c echo.Context) error {
		if err := db.Ping(); err != nil {
			return c.String(http.StatusServiceUnavailable, "DB not ready")
		}
		return c.String(http.StatusOK, "Ready")
	})

	// Middleware
	e.Use(mwecho.Logger())
	e.Use(mwecho.Recover())

	// Client API
	clientGroup := e.Group("/api")
	clienthttp.RegisterRoutes(clientGroup, clientHandler)

	// Admin API
	adminGroup := e.Group("/api/admin")
	adminGroup.Use(mwsvc.AdminAPIKeyAuth(cfg.AdminAPIKey))
	adminhttp.RegisterRoutes(adminGroup, adminHandler)

	// Web UI
	webGroup := e.Group("/web")
	webGroup.Use(mwsvc.Version()) // Add app version to context
	webGroup.Use(mwsvc.WebAuth(cfg.AdminAPIKey, sessions))
	webGroup.Use(mwecho.CSRFWithConfig(mwecho.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   cfg.SecureCookie,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteStrictMode,
		Skipper: func(c echo.Context) bool {
			// Skip CSRF for login page (user not authenticated yet)
			return strings.HasPrefix(c.Path(), "/web/login")
		},
	}))
	webGroup.Use(mwsvc.CSRF()) // Copy CSRF token to request context for templates
	webhttp.RegisterRoutes(webGroup, webHandler)

	//
	// HTTP server
	//
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		Echo: e,
		HTTP: srv,
		DB:   db,
	}, nil
}
