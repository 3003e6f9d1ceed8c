package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/MKhiriev/go-field-keeper/internal/adapter"
	"github.com/MKhiriev/go-field-keeper/internal/client"
	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/service"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "version" {
		fmt.Print(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))
	}

	cfg, err := config.GetClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}

	// the log lives next to the outbox database
	log := logger.NewClientLogger("field-agent", filepath.Join(filepath.Dir(cfg.Storage.DB.DSN), "field-agent.log"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer storages.DB.Close()

	services := service.NewClientServices(storages, serverAdapter, cfg.Device, log)
	app := client.NewApp(services, serverAdapter, cfg.Workers, os.Stdin, os.Stdout, log)

	if err = app.Run(ctx, args); err != nil {
		log.Err(err).Strs("args", redact(args)).Msg("command failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		_ = storages.DB.Close()
		os.Exit(1)
	}
}

// redact keeps only the command name; flags may carry passwords.
func redact(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	return args[:1]
}
