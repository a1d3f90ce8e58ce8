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

package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tomoncle/heron/database"
)

// healthCacheTTL is the freshness window of the health check response.
const healthCacheTTL = 120 * time.Second

// healthQuery models the optional identifying parameters of the health
// endpoint. Only test1 participates in the cache identity.
type healthQuery struct {
	Test1 string `query:"test1"`
	Test2 string `query:"test2"`
}

// checkHealth returns a constant liveness payload. The cache middleware in
// front of it makes repeated probes within the freshness window free.
func (s *Server) checkHealth(c echo.Context) error {
	var q healthQuery
	_ = c.Bind(&q)
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// checkDatabaseHealth reports connectivity and pool statistics of the
// global database.
func (s *Server) checkDatabaseHealth(c echo.Context) error {
	status := database.GetHealthStatus(c.Request().Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"database": status,
		"stats":    database.GetDatabaseStats(),
	})
}
