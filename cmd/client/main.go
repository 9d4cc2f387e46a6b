package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Thomazoide/superform-av/internal/config"
	"github.com/Thomazoide/superform-av/internal/device"
	"github.com/Thomazoide/superform-av/internal/models"
	"github.com/Thomazoide/superform-av/internal/session"
	"github.com/Thomazoide/superform-av/internal/submit"
	"github.com/Thomazoide/superform-av/internal/utils"
)

func main() {
	cmd := flag.String("cmd", "submit", "Command: submit|probe|token")
	describe := flag.String("describe", "", "Optional report description (max 300 chars)")
	serverFlag := flag.String("server", "", "Override report endpoint URL")
	deviceKey := flag.String("key", "", "Provisioned device key (for token)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, _, err := config.LoadConfig()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if *serverFlag != "" {
		cfg.Client.Endpoint = strings.TrimRight(*serverFlag, "/")
	}

	switch *cmd {
	case "submit":
		if err := submitFlow(cfg, *describe); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "probe":
		if err := probeFlow(cfg); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "token":
		if err := tokenFlow(cfg, *deviceKey); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

// ====== Capture & Submit Flow ======

func submitFlow(cfg *config.Config, describe string) error {
	ctx := context.Background()
	camera, locator := buildProviders(cfg)

	fmt.Println("[1] Checking device permissions...")
	checker := &device.Checker{
		Camera:   camera,
		Locator:  locator,
		MediaDir: cfg.Client.Camera.OutputDir,
	}
	if err := checker.Check(ctx); err != nil {
		// Blocking: access must be fixed externally before running again.
		return err
	}

	sess := session.New(camera, locator, submit.NewClient(cfg.Client.Endpoint, cfg.Client.Token))

	fmt.Println("[2] Capturing photo...")
	path, err := sess.Capture(ctx)
	if err != nil {
		if errors.Is(err, device.ErrCaptureCanceled) {
			fmt.Println("Capture canceled, nothing submitted.")
			return nil
		}
		return err
	}
	fmt.Println("    photo:", path)

	if describe != "" {
		if err := sess.SetDescription(describe); err != nil {
			return err
		}
	}

	fmt.Println("[3] Resolving location and submitting...")
	resp, err := sess.Submit(ctx)
	if err != nil {
		return err
	}

	if resp != nil && resp.Data != nil {
		fmt.Printf("[4] Report %s accepted: %s\n", resp.Data.ID, resp.Message)
	} else {
		fmt.Println("[4] Report accepted.")
	}
	return nil
}

// ====== Permission Probe ======

func probeFlow(cfg *config.Config) error {
	camera, locator := buildProviders(cfg)
	checker := &device.Checker{
		Camera:   camera,
		Locator:  locator,
		MediaDir: cfg.Client.Camera.OutputDir,
	}
	if err := checker.Check(context.Background()); err != nil {
		return err
	}
	fmt.Println("All capabilities available.")
	return nil
}

// ====== Device Token Flow ======

func tokenFlow(cfg *config.Config, key string) error {
	if key == "" {
		return errors.New("--key required")
	}
	base := strings.TrimSuffix(cfg.Client.Endpoint, "/api/reports")
	req := models.TokenRequest{DeviceID: utils.DeviceID(), DeviceKey: key}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := http.Post(base+"/api/devices/token", "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	var token models.TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return fmt.Errorf("decode server response: %w", err)
	}
	fmt.Println("Token:", token.Token)
	fmt.Println("Expires:", token.ExpiresAt.Format(time.RFC3339))
	return nil
}

func buildProviders(cfg *config.Config) (device.CameraProvider, device.LocationProvider) {
	camera := &device.ExecCamera{
		Command:   cfg.Client.Camera.Command,
		OutputDir: cfg.Client.Camera.OutputDir,
	}
	var locator device.LocationProvider
	if cfg.Client.Location.Provider == "static" {
		locator = &device.StaticLocator{
			Lat: cfg.Client.Location.Lat,
			Lng: cfg.Client.Location.Lng,
		}
	} else {
		locator = device.NewHTTPLocator(cfg.Client.Location.URL,
			time.Duration(cfg.Client.Location.TimeoutSeconds)*time.Second)
	}
	return camera, locator
}
