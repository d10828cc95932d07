// Copyright 2025 Umpire Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point for the umpire review server. It wires
// configuration, logging, OpenTelemetry, the cloud clients and the review
// workflow, then serves the upload and health endpoints over gin until
// interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/umpire-labs/gcp-go-ai-umpire/internal/api"
	"github.com/umpire-labs/gcp-go-ai-umpire/internal/telemetry"
)

func main() {
	config := GetConfig()

	telemetry.SetupLogging(config.Runtime.LogLevel)
	slog.Info("logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("failed to set up OpenTelemetry", "error", err)
		os.Exit(1)
	}
	slog.Info("telemetry initialized")

	InitState(ctx)
	slog.Info("state initialized", "gemini_configured", config.GeminiConfigured())

	r := gin.Default()
	r.Use(otelgin.Middleware("umpire-review-server"))
	r.Use(cors.Default())

	server := &api.Server{Config: config}
	if state.review != nil {
		server.Reviewer = state.review
	}
	server.Routes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Runtime.Port),
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen failed", "error", err)
		}
	}()
	slog.Info("server ready", "port", config.Runtime.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if state.cloud != nil {
		state.cloud.Close()
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown reported errors", "error", err)
	}
	slog.Info("server exited")
}
