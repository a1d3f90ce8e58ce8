/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server exposes the HTTP surface: a cached health-check endpoint
// and a database health endpoint, with request logging and recovery.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/tomoncle/heron/cache"
	"github.com/tomoncle/heron/database"
	"github.com/tomoncle/heron/utils"
)

// HeaderRequestID carries the request identity assigned by the server.
const HeaderRequestID = "X-Request-ID"

// Server wires the echo engine, configuration, and the response cache.
type Server struct {
	echo   *echo.Echo
	config *database.Config
	store  cache.Store
	logger zerolog.Logger
}

// New builds a server over the given configuration and cache store.
func New(config *database.Config, store cache.Store) *Server {
	if config == nil {
		config = database.DefaultConfig()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		config: config,
		store:  store,
		logger: utils.NewLogger("server"),
	}

	e.Use(s.requestID())
	e.Use(s.requestLogger())
	e.Use(middleware.Recover())
	s.routes()
	return s
}

// Echo returns the underlying engine, used by tests and embedders.
func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) routes() {
	cached := cache.Middleware(s.store, cache.NewKeyMaker(""), cache.Options{
		Tag:         cache.TagHealthCheck,
		TTL:         healthCacheTTL,
		QueryParams: []string{"test1"},
	})
	s.echo.GET("/health", s.checkHealth, cached)
	s.echo.GET("/health/database", s.checkDatabaseHealth)
}

// Start serves HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         s.config.ServerConfig.Address,
		ReadTimeout:  s.config.ServerConfig.ReadTimeout,
		WriteTimeout: s.config.ServerConfig.WriteTimeout,
	}
	s.logger.Info().Str("address", srv.Addr).Msg("http server listening")
	return s.echo.StartServer(srv)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, id)
			c.Set("request_id", id)
			return next(c)
		}
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			event := s.logger.Info()
			if err != nil {
				event = s.logger.Error().Err(err)
			}
			requestID, _ := c.Get("request_id").(string)
			event.
				Str("request_id", requestID).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
