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
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tomoncle/heron/utils"
)

// HeaderCache reports whether a response was served from the cache.
const HeaderCache = "X-Heron-Cache"

// Options configures the response cache for one route: the logical tag,
// the freshness window, and the query parameters that identify an entry.
type Options struct {
	Tag         Tag
	TTL         time.Duration
	QueryParams []string
}

// Middleware returns an echo middleware that caches successful GET
// responses in the store, keyed by tag plus the identifying query
// parameters. A stored, still-fresh entry is served verbatim; everything
// else falls through to the handler and 200 responses are recorded.
func Middleware(store Store, keyer *KeyMaker, opts Options) echo.MiddlewareFunc {
	if keyer == nil {
		keyer = NewKeyMaker("")
	}
	logger := utils.NewLogger("cache")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := keyer.Make(opts.Tag, Identify(c.QueryParams(), opts.QueryParams))

			raw, ok, err := store.Get(ctx, key)
			if err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
			} else if ok {
				if stored, err := decodeEntry(raw); err == nil && stored.fresh(time.Now()) {
					c.Response().Header().Set(HeaderCache, "HIT")
					return c.Blob(stored.Status, stored.ContentType, stored.Body)
				}
			}

			recorder := newResponseRecorder(c.Response().Writer)
			c.Response().Writer = recorder
			c.Response().Header().Set(HeaderCache, "MISS")

			if err := next(c); err != nil {
				return err
			}

			if recorder.status != http.StatusOK {
				return nil
			}
			raw, err = encodeEntry(&entry{
				Status:      recorder.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        recorder.body.Bytes(),
				ExpiresAt:   time.Now().Add(opts.TTL),
			})
			if err != nil {
				return nil
			}
			if err := store.Set(ctx, key, raw, opts.TTL); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
			}
			return nil
		}
	}
}

// responseRecorder tees the response body so it can be stored after the
// handler ran.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
