/*
Package handler provides the HTTP handlers and routing setup for the client's
local status server.

This file defines the Router, applying logging, CORS, and recovery middleware
before delegating to the status handlers and the Prometheus metrics endpoint.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"liveroom/internal/app/client"
	"liveroom/internal/configs"
	"liveroom/internal/pkg/logx"
	"liveroom/internal/pkg/resp"
)

// AppDeps bundles the dependencies the status handlers need.
type AppDeps struct {
	Client *client.Client
	Config *configs.AppConfig
}

// Router sets up the routing table (chi.Router) for the local status server.
// The server binds to loopback by default; CORS is open so local development
// UIs can poll it.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "liveroom client",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Get("/status", HandleStatus(deps))
	r.Get("/rooms", HandleRooms(deps))
	r.Get("/cursors", HandleCursors(deps))

	r.Handle("/metrics", promhttp.Handler())

	return r
}
