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

// Package utils provides the zerolog-backed logging facility shared by the
// database, cache, and server layers.
package utils

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	rootOnce sync.Once
	rootLog  zerolog.Logger
)

func root() zerolog.Logger {
	rootOnce.Do(func() {
		var out io.Writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.DateTime,
		}
		if os.Getenv("HERON_LOG_JSON") == "1" {
			out = os.Stderr
		}
		rootLog = zerolog.New(out).With().Timestamp().Logger()
	})
	return rootLog
}

// NewLogger returns a named component logger.
func NewLogger(component string) zerolog.Logger {
	return root().With().Str("component", component).Logger()
}

// SetLevel adjusts the global log level. Unknown level strings are ignored.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return
	}
	zerolog.SetGlobalLevel(parsed)
}
