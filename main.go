package main

import (
	"flag"
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/zeyinlabs/zeyin/internal/api"
	"github.com/zeyinlabs/zeyin/internal/config"
	"github.com/zeyinlabs/zeyin/internal/db"
	"github.com/zeyinlabs/zeyin/internal/logger"
	"github.com/zeyinlabs/zeyin/internal/session"
	"github.com/zeyinlabs/zeyin/internal/web"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	baseURL := flag.String("base-url", "", "public base URL used in magic links")
	dataDir := flag.String("data-dir", "data", "directory for the sqlite database")
	flag.Parse()

	cfg, err := config.Load(*addr, *baseURL, *dataDir)
	if err != nil {
		// The zap logger is not up yet; this is the one bare exit.
		panic(err)
	}

	log, err := logger.New(cfg.Dev)
	if err != nil {
		panic(err)
	}

	if err := db.Init(cfg.DataDir); err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer db.Close()

	provider := session.NewProvider(cfg.Auth, log)

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, log)
	api.RegisterAuthRoutes(mux, cfg, provider, log)
	mux.HandleFunc("GET "+web.CallbackPath, web.Callback(provider, log))

	mux.Handle("/", &app.Handler{
		Name:        "Zeyin",
		ShortName:   "Zeyin",
		Description: "Focus sessions, micro-quests and a supportive circle.",
		Styles:      []string{"/web/app.css"},
		ThemeColor:  "#2b6df6",
	})

	handler := web.SessionGate(provider, log)(mux)

	log.Infof("zeyin listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
