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

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomoncle/heron/cache"
	"github.com/tomoncle/heron/database"
	"github.com/tomoncle/heron/server"
	"github.com/tomoncle/heron/utils"
)

func main() {
	configPath := flag.String("config", "configs/heron.yaml", "path to the YAML configuration file")
	flag.Parse()

	logger := utils.NewLogger("main")

	cfg, err := database.LoadConfig(*configPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", *configPath).Msg("config not loaded, using defaults")
		cfg = database.DefaultConfig()
	}
	utils.SetLevel(cfg.ServerConfig.LogLevel)

	if _, err := database.InitDB(cfg); err != nil {
		logger.Fatal().Err(err).Msg("database initialization failed")
	}
	defer func() { _ = database.CloseDB() }()

	var store cache.Store
	switch cfg.CacheConfig.Backend {
	case "redis":
		store = cache.NewRedisStoreFromAddress(cfg.CacheConfig.RedisAddress)
	default:
		store = cache.NewMemoryStore(cfg.CacheConfig.MaxEntries, cfg.CacheConfig.DefaultTTL)
	}

	srv := server.New(cfg, store)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}
}
