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

package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "sqlite", cfg.ConnectionConfig.Type)
	require.Equal(t, ":memory:", cfg.ConnectionConfig.Host)
	require.Equal(t, "memory", cfg.CacheConfig.Backend)
	require.Equal(t, 2*time.Minute, cfg.CacheConfig.DefaultTTL)
	require.Equal(t, ":8080", cfg.ServerConfig.Address)
	require.Equal(t, "info", cfg.ServerConfig.LogLevel)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heron.yaml")
	content := `
connection:
  type: postgres
  host: db.internal
  port: 5432
  username: heron
  dbname: heron
  enable_query_log: true
cache:
  backend: redis
  redis_address: localhost:6379
server:
  address: ":9090"
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.ConnectionConfig.Type)
	require.Equal(t, "db.internal", cfg.ConnectionConfig.Host)
	require.Equal(t, 5432, cfg.ConnectionConfig.Port)
	require.True(t, cfg.ConnectionConfig.EnableQueryLog)
	require.Equal(t, "redis", cfg.CacheConfig.Backend)
	require.Equal(t, "localhost:6379", cfg.CacheConfig.RedisAddress)
	require.Equal(t, ":9090", cfg.ServerConfig.Address)
	require.Equal(t, "debug", cfg.ServerConfig.LogLevel)

	// Untouched sections keep their defaults.
	require.Equal(t, 100, cfg.ConnectionConfig.MaxOpenConns)
	require.Equal(t, 1024, cfg.CacheConfig.MaxEntries)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestFactoryRejectsUnsupportedType(t *testing.T) {
	factory := NewDatabaseFactory()
	_, err := factory.CreateFromConfig(&ConnectionConfig{Type: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database type")

	_, err = factory.CreateFromConfig(nil)
	require.Error(t, err)
}

func TestFactoryEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")

	factory := NewDatabaseFactory()
	cfg := DefaultConnectionConfig()
	cfg.Type = "postgres"
	_, err := factory.CreateFromConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, "override.internal", cfg.Host)
	require.Equal(t, 5433, cfg.Port)
	require.True(t, cfg.EnableQueryLog)
}

func TestModelRegistryOrdersByPriority(t *testing.T) {
	registry := newModelRegistry()
	registry.Register(NewModelAdapter(&note{}, 10))
	registry.Register(NewModelAdapter(&note{}, 1))
	registry.Register(NewModelAdapter(&note{}, 5))

	models := registry.Models()
	require.Len(t, models, 3)
	require.Equal(t, 1, models[0].Priority())
	require.Equal(t, 5, models[1].Priority())
	require.Equal(t, 10, models[2].Priority())
}
