package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/dinesync/dinesync/internal/api"
	"github.com/dinesync/dinesync/internal/config"
	"github.com/dinesync/dinesync/internal/db"
	"github.com/dinesync/dinesync/internal/middleware"
	"github.com/dinesync/dinesync/internal/services"
	"github.com/dinesync/dinesync/internal/yelp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown log level %q, using info", cfg.LogLevel)
	}

	sqlDB, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer sqlDB.Close()
	if err := db.RunMigrations(sqlDB, ""); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	store, err := db.NewStore(sqlDB, log)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	timeout := time.Duration(cfg.YelpTimeoutSeconds) * time.Second
	searcher := yelp.NewClient(cfg.YelpAPIKey, timeout)
	if cfg.YelpAPIKey == "" {
		log.Warn("YELP_API_KEY not set, catalog searches will fall back to sample data")
	}
	catalog := services.NewCatalogService(searcher, log)

	mux := http.NewServeMux()
	api.NewRouter(store, catalog, log).Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "DineSync API",
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})

	handler := middleware.RequestLogger(log)(
		middleware.NoStore(middleware.CORS(middleware.SecureHeaders(mux))))

	log.WithField("addr", cfg.Addr).Info("dinesync server listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
