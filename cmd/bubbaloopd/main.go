// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

// Command bubbaloopd is the per-machine supervisor: it discovers installed
// bubble-node systemd units, publishes their live status on the fabric, and
// answers start/stop/restart/build/logs commands for them.
//
// # Application Architecture
//
// The daemon initializes components in the following order:
//
//  1. Configuration: Koanf-layered defaults, config file, environment
//  2. Logging: zerolog, configured from Logging.Level/Format
//  3. Fabric session: a NATS connection standing in for the Zenoh overlay
//  4. Registry: the actor-owned node map, reconciled against systemd
//  5. Daemon API: queryables bound under bubbaloop/<scope>/<machine>/daemon/api
//  6. Metrics: an optional Prometheus /metrics listener
//
// Every long-running component runs under a suture supervisor tree so a
// crash in one does not take the others down with it.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kornia/bubbaloop/internal/config"
	"github.com/kornia/bubbaloop/internal/daemon"
	"github.com/kornia/bubbaloop/internal/fabric"
	"github.com/kornia/bubbaloop/internal/logging"
	"github.com/kornia/bubbaloop/internal/naming"
	"github.com/kornia/bubbaloop/internal/registry"
	"github.com/kornia/bubbaloop/internal/signaling"
	"github.com/kornia/bubbaloop/internal/supervisor"
	"github.com/kornia/bubbaloop/internal/supervisor/services"
	"github.com/kornia/bubbaloop/internal/svcmanager"
	"github.com/kornia/bubbaloop/internal/wire"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	machine := cfg.Scope.Machine
	if machine == "" {
		machine = naming.MachineID(nil, nil)
	}
	scope := cfg.Scope.Name
	if scope == "" {
		scope = naming.Scope(nil)
	}

	logging.Info().Str("scope", scope).Str("machine", machine).Msg("starting bubbaloopd")

	broadcast := signaling.New(context.Background())
	stop := broadcast.Watch()
	defer stop()

	sess, err := fabric.Open(broadcast.Context(), cfg.Fabric, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open fabric session")
	}

	mgr := svcmanager.NewSystemdManager(cfg.Daemon.StatusPollRate)

	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	nodesTopic := naming.Topic(scope, machine, "daemon/nodes")
	nodesPub := sess.DeclarePublisher(nodesTopic)
	publishView := func(view wire.RegistryView) {
		if err := nodesPub.Publish(view.Marshal()); err != nil {
			logging.Warn().Err(err).Str("topic", nodesTopic).Msg("failed to publish registry view")
		}
	}

	reg := registry.New(mgr, machine, scope, cfg.Daemon.ReconcileInterval, cfg.Daemon.HeartbeatStaleAfter, publishView, slogLogger)
	d := daemon.New(sess, reg, mgr, machine, scope, cfg.Daemon.CommandTimeout, cfg.Daemon.LogsTimeout, slogLogger)

	tree.AddCoreService(reg)
	tree.AddAPIService(d)
	tree.AddCoreService(services.NewFabricSessionService(sess))

	if cfg.Metrics.Addr != "" {
		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(middleware.RequestID)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins(cfg.Metrics.CORSAllowedOrigins),
			AllowedMethods: []string{"GET"},
			MaxAge:         300,
		}))
		r.Handle("/metrics", promhttp.Handler())
		r.Get("/healthz", healthzHandler(reg))

		metricsServer := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		}
		tree.AddAPIService(services.NewNamedHTTPServerService("metrics-http", metricsServer, 10*time.Second))
		logging.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listener enabled")
	}

	if err := tree.Serve(broadcast.Context()); err != nil {
		logging.Error().Err(err).Msg("supervisor tree stopped with error")
	}

	logging.Info().Msg("bubbaloopd stopped")
}

// corsOrigins splits a comma-separated origin list, trimming whitespace
// around each entry. An empty input yields no allowed origins rather than
// go-chi/cors's wildcard default.
func corsOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// healthzHandler reports 200 once the registry actor is answering queries,
// so a load balancer or init system can tell a wedged daemon (Serve loop
// deadlocked, reqCh full) from one still starting up.
func healthzHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		view, err := reg.View(ctx)
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":     "ok",
			"nodes":      len(view.Entries),
			"generation": view.Generation,
		})
	}
}
