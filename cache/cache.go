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
	"context"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tomoncle/heron/types"
)

// DefaultPrefix namespaces cache keys produced by this module.
const DefaultPrefix = "heron"

// Tag is the logical category of a cached response.
type Tag int

const (
	TagIllegal     Tag = types.IllegalValue
	TagHealthCheck Tag = 1
)

var _ types.BaseEnum = TagHealthCheck

func (t Tag) IsValid() bool { return t == TagHealthCheck }

func (t Tag) Number() int { return int(t) }

func (t Tag) String() string {
	switch t {
	case TagHealthCheck:
		return "get_health_check"
	default:
		return types.IllegalName
	}
}

func (t Tag) Name() string { return t.String() }

func (t Tag) Desc() string {
	switch t {
	case TagHealthCheck:
		return "health check response cache"
	default:
		return types.IllegalDesc
	}
}

// Store is a byte store with per-entry TTL. Implementations must treat a
// missing key as (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// KeyMaker builds cache keys from a tag and the identifying request
// parameters: <prefix>:<tag>:<sorted query encoding>.
type KeyMaker struct {
	prefix string
}

// NewKeyMaker returns a key maker with the given namespace prefix, falling
// back to DefaultPrefix when empty.
func NewKeyMaker(prefix string) *KeyMaker {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &KeyMaker{prefix: prefix}
}

// Make builds the cache key. url.Values.Encode sorts by key, so the same
// identity always yields the same key.
func (k *KeyMaker) Make(tag Tag, identity url.Values) string {
	return k.prefix + ":" + tag.String() + ":" + identity.Encode()
}

// Identify projects the request query onto the identifying parameter names.
// Parameters absent from the request do not contribute to the identity.
func Identify(query url.Values, params []string) url.Values {
	identity := make(url.Values, len(params))
	for _, param := range params {
		if values, ok := query[param]; ok {
			identity[param] = values
		}
	}
	return identity
}

// entry is the stored response envelope.
type entry struct {
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (e *entry) fresh(now time.Time) bool { return now.Before(e.ExpiresAt) }

func encodeEntry(e *entry) ([]byte, error) { return json.Marshal(e) }

func decodeEntry(raw []byte) (*entry, error) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
