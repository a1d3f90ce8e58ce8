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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/heron/types"
)

func TestKeyMakerDeterministic(t *testing.T) {
	keyer := NewKeyMaker("")

	a := url.Values{"test1": {"x"}, "other": {"y"}}
	b := url.Values{"other": {"y"}, "test1": {"x"}}
	require.Equal(t, keyer.Make(TagHealthCheck, a), keyer.Make(TagHealthCheck, b))
	require.Equal(t, "heron:get_health_check:other=y&test1=x", keyer.Make(TagHealthCheck, a))

	custom := NewKeyMaker("svc")
	require.Equal(t, "svc:get_health_check:", custom.Make(TagHealthCheck, nil))
}

func TestKeyMakerDistinguishesValues(t *testing.T) {
	keyer := NewKeyMaker("")
	x := keyer.Make(TagHealthCheck, url.Values{"test1": {"x"}})
	y := keyer.Make(TagHealthCheck, url.Values{"test1": {"y"}})
	require.NotEqual(t, x, y)
}

func TestIdentifyProjectsParams(t *testing.T) {
	query := url.Values{
		"test1": {"x"},
		"test2": {"ignored"},
		"page":  {"3"},
	}
	identity := Identify(query, []string{"test1"})
	require.Equal(t, url.Values{"test1": {"x"}}, identity)

	// Absent parameters do not contribute.
	identity = Identify(url.Values{}, []string{"test1"})
	require.Empty(t, identity)
}

func TestTagEnum(t *testing.T) {
	require.True(t, TagHealthCheck.IsValid())
	require.Equal(t, "get_health_check", TagHealthCheck.String())
	require.Equal(t, 1, TagHealthCheck.Number())
	require.False(t, TagIllegal.IsValid())
	require.Equal(t, types.IllegalName, TagIllegal.Name())
}

func TestEntryRoundTripAndFreshness(t *testing.T) {
	now := time.Now()
	raw, err := encodeEntry(&entry{
		Status:      200,
		ContentType: "application/json",
		Body:        []byte(`{"status":"ok"}`),
		ExpiresAt:   now.Add(time.Minute),
	})
	require.NoError(t, err)

	decoded, err := decodeEntry(raw)
	require.NoError(t, err)
	require.Equal(t, 200, decoded.Status)
	require.Equal(t, []byte(`{"status":"ok"}`), decoded.Body)
	require.True(t, decoded.fresh(now))
	require.False(t, decoded.fresh(now.Add(2*time.Minute)))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(4, time.Minute)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreEvictsBeyondCapacity(t *testing.T) {
	store := NewMemoryStore(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, store.Set(ctx, "c", []byte("3"), time.Minute))

	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)
}
