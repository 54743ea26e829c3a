// Package main Reflexio Harness API
// @title Reflexio Harness API
// @version 1.0
// @description Evaluation and reflective feedback harness for prompt optimizers
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/mberliner/reflexio/internal/app"
	_ "github.com/mberliner/reflexio/internal/docs"
	"github.com/mberliner/reflexio/internal/router"
	"github.com/mberliner/reflexio/internal/server"
	"github.com/mberliner/reflexio/pkg/config/env"
	"github.com/mberliner/reflexio/pkg/logging"
	pkgserver "github.com/mberliner/reflexio/pkg/server"
)

func main() {
	if err := env.LoadDotEnv(env.AppEnv(), "cmd/reflexio_api/.env"); err != nil {
		slog.Warn("Continuing without .env", "error", err)
	}
	if err := logging.Setup(os.Stderr); err != nil {
		slog.Error("Failed to configure logging", "error", err)
		os.Exit(1)
	}

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	appCfg, err := LoadAppConfig()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	s := server.New(sCfg, pkgserver.NewOkHealthChecker()).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/healthz").
		SetupMetrics("/metrics").
		SetupOpenApi("/swagger/*")

	h, err := app.Load(s.Context(), appCfg.TaskSpecPath)
	if err != nil {
		slog.Error("Failed to build harness", "spec", appCfg.TaskSpecPath, "error", err)
		os.Exit(1)
	}
	defer h.Close()

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Reflexio harness is running: "+h.Task.Name)
	})

	router.NewHarnessRouter(s.Echo, h.Adapter, *h.Task).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		slog.Error("Failed to start server", "error", err)
		h.Close()
		os.Exit(1)
	}
}
