package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/Thomazoide/superform-av/internal/api"
	"github.com/Thomazoide/superform-av/internal/auth"
	"github.com/Thomazoide/superform-av/internal/config"
	"github.com/Thomazoide/superform-av/internal/files"
	"github.com/Thomazoide/superform-av/internal/store"
	"github.com/Thomazoide/superform-av/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, path, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if path != "" {
		log.Println("Config loaded from", path)
	}

	logger, err := utils.NewLogger(cfg.Log.LogDir, cfg.Log.LogFile)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer logger.Close()

	reports, err := store.Open(cfg.Server.DSN)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	h := &api.Handlers{
		Store:       reports,
		Photos:      files.NewPhotoStore(cfg.Server.UploadDir),
		Keys:        auth.NewDeviceKeys(cfg.Server.Auth.Devices),
		Tokens:      auth.NewTokenIssuer(cfg.Server.Auth.Secret),
		Log:         logger,
		AuthEnabled: cfg.Server.Auth.Enabled,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.IP, cfg.Server.Port)
	logger.Info("server running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, api.NewRouter(h)))
}
