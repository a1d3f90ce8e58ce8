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

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJsonObjectValueScan(t *testing.T) {
	obj := JsonObject{"name": "ada"}
	value, err := obj.Value()
	require.NoError(t, err)

	var scanned JsonObject
	require.NoError(t, scanned.Scan(value))
	require.Equal(t, "ada", scanned["name"])

	require.NoError(t, scanned.Scan(nil))
	require.Empty(t, scanned)

	require.Error(t, scanned.Scan(42))

	var nilObj JsonObject
	value, err = nilObj.Value()
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestJsonArrayValueScan(t *testing.T) {
	arr := JsonArray{{"n": float64(1)}, {"n": float64(2)}}
	value, err := arr.Value()
	require.NoError(t, err)

	var scanned JsonArray
	require.NoError(t, scanned.Scan(value))
	require.Len(t, scanned, 2)
	require.Equal(t, float64(2), scanned[1]["n"])
}
