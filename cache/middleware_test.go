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

package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newCachedEcho(store Store, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	cached := Middleware(store, NewKeyMaker(""), Options{
		Tag:         TagHealthCheck,
		TTL:         ttl,
		QueryParams: []string{"test1"},
	})
	e.GET("/health", handler, cached)
	return e
}

func doGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareMissThenHit(t *testing.T) {
	calls := 0
	e := newCachedEcho(NewMemoryStore(16, time.Minute), time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	first := doGet(e, "/health")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "MISS", first.Header().Get(HeaderCache))
	require.JSONEq(t, `{"status":"ok"}`, first.Body.String())

	second := doGet(e, "/health")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "HIT", second.Header().Get(HeaderCache))
	require.JSONEq(t, `{"status":"ok"}`, second.Body.String())
	require.Equal(t, 1, calls)
}

func TestMiddlewareKeysOnIdentifyingParam(t *testing.T) {
	calls := 0
	e := newCachedEcho(NewMemoryStore(16, time.Minute), time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	require.Equal(t, "MISS", doGet(e, "/health?test1=a").Header().Get(HeaderCache))
	require.Equal(t, "HIT", doGet(e, "/health?test1=a").Header().Get(HeaderCache))

	// A different identifying value is a different entry.
	require.Equal(t, "MISS", doGet(e, "/health?test1=b").Header().Get(HeaderCache))
	require.Equal(t, 2, calls)

	// Parameters outside the identity share the entry.
	require.Equal(t, "HIT", doGet(e, "/health?test1=a&test2=zzz").Header().Get(HeaderCache))
	require.Equal(t, 2, calls)
}

func TestMiddlewareExpiredEntryRefetches(t *testing.T) {
	calls := 0
	e := newCachedEcho(NewMemoryStore(16, time.Minute), -time.Second, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	require.Equal(t, "MISS", doGet(e, "/health").Header().Get(HeaderCache))
	require.Equal(t, "MISS", doGet(e, "/health").Header().Get(HeaderCache))
	require.Equal(t, 2, calls)
}

func TestMiddlewareSkipsNon200(t *testing.T) {
	e := newCachedEcho(NewMemoryStore(16, time.Minute), time.Minute, func(c echo.Context) error {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "down"})
	})

	require.Equal(t, http.StatusServiceUnavailable, doGet(e, "/health").Code)
	second := doGet(e, "/health")
	require.Equal(t, http.StatusServiceUnavailable, second.Code)
	require.Equal(t, "MISS", second.Header().Get(HeaderCache))
}

func TestMiddlewareIgnoresNonGet(t *testing.T) {
	store := NewMemoryStore(16, time.Minute)
	e := echo.New()
	cached := Middleware(store, nil, Options{Tag: TagHealthCheck, TTL: time.Minute})
	e.POST("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}, cached)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get(HeaderCache))

	_, ok, err := store.Get(req.Context(), NewKeyMaker("").Make(TagHealthCheck, nil))
	require.NoError(t, err)
	require.False(t, ok)
}
