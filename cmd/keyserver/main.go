package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/keyserver/internal/config"
	"winsbygroup.com/keyserver/internal/server"
	"winsbygroup.com/keyserver/internal/sqlite"
	"winsbygroup.com/keyserver/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println(version.Banner())

	configPath := flag.String("config", "config.yaml", "path to config file")
	routesFlag := flag.Bool("routes", false, "print routes and exit")
	schemaFlag := flag.Bool("schema", false, "print the database schema and exit")
	demoFlag := flag.Bool("demo", false, "load sample licenses on new database (for demos)")
	flag.Parse()

	if *schemaFlag {
		fmt.Print(sqlite.Schema())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.DemoMode = *demoFlag

	srv, err := server.Build(cfg)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}
	defer srv.DB.Close()

	if *routesFlag {
		printRoutes(srv.Echo.Routes())
		return
	}

	go func() {
		log.Printf("Listening on %s", cfg.Addr)
		if err := srv.Echo.StartServer(srv.HTTP); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Print("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Echo.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// printRoutes lists method and path, skipping the catch-all entries echo adds
// for group middleware.
func printRoutes(routes []*echo.Route) {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	for _, r := range routes {
		if r.Method == echo.RouteNotFound {
			continue
		}
		fmt.Printf("%-7s %s\n", r.Method, r.Path)
	}
}
