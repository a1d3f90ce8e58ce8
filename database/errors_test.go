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
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func TestClassifySQLErrorMySQL(t *testing.T) {
	tests := []struct {
		number uint16
		want   SQLError
	}{
		{1054, NoColumnErr},
		{1146, NoTableErr},
		{1050, ExistTableErr},
		{1062, DuplicateKeyErr},
		{1048, NotNullViolationErr},
		{1452, ForeignKeyViolationErr},
		{3819, CheckConstraintViolationErr},
		{1265, DataTruncatedErr},
		{9999, UnknownErr},
	}
	for _, tt := range tests {
		err := &mysql.MySQLError{Number: tt.number, Message: "boom"}
		class, ok := ClassifySQLError(err)
		require.True(t, ok, "number %d", tt.number)
		require.Equal(t, tt.want, class, "number %d", tt.number)
	}
}

func TestClassifySQLErrorWrapped(t *testing.T) {
	inner := &mysql.MySQLError{Number: 1062, Message: "duplicate"}
	class, ok := ClassifySQLError(fmt.Errorf("insert failed: %w", inner))
	require.True(t, ok)
	require.Equal(t, DuplicateKeyErr, class)
}

func TestClassifySQLErrorText(t *testing.T) {
	tests := []struct {
		text string
		want SQLError
	}{
		{`ERROR: duplicate key value violates unique constraint "users_pkey" (SQLSTATE 23505)`, DuplicateKeyErr},
		{`ERROR: relation "users" does not exist (SQLSTATE 42P01)`, NoTableErr},
		{"UNIQUE constraint failed: notes.body", DuplicateKeyErr},
		{"no such table: notes", NoTableErr},
		{"no such column: nickname", NoColumnErr},
		{"NOT NULL constraint failed: notes.body", NotNullViolationErr},
		{"FOREIGN KEY constraint failed", ForeignKeyViolationErr},
		{`relation "users" already exists`, ExistTableErr},
		{"sql: no rows in result set", NoRowsErr},
	}
	for _, tt := range tests {
		class, ok := ClassifySQLError(errors.New(tt.text))
		require.True(t, ok, tt.text)
		require.Equal(t, tt.want, class, tt.text)
	}
}

func TestClassifySQLErrorUnrecognized(t *testing.T) {
	_, ok := ClassifySQLError(errors.New("dial tcp: connection refused"))
	require.False(t, ok)

	_, ok = ClassifySQLError(nil)
	require.False(t, ok)
}
