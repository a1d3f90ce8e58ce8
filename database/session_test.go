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
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type note struct {
	bun.BaseModel `bun:"table:notes,alias:note"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Body string `bun:"body,notnull,unique" json:"body"`
}

var sessionDBSeq int

func newSessionTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sessionDBSeq++
	dsn := fmt.Sprintf("file:session%d?mode=memory&cache=shared", sessionDBSeq)
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = db.NewCreateTable().Model((*note)(nil)).Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSessionCommitFlushesInStagingOrder(t *testing.T) {
	db := newSessionTestDB(t)
	session := NewSession(db)
	ctx := context.Background()

	first := &note{Body: "first"}
	second := &note{Body: "second"}
	session.Add(first)
	session.Add(second)
	session.Delete(first)
	require.Equal(t, 3, session.Pending())

	require.NoError(t, session.Commit(ctx))
	require.Equal(t, 0, session.Pending())

	count, err := db.NewSelect().Model((*note)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	var remaining note
	require.NoError(t, db.NewSelect().Model(&remaining).Scan(ctx))
	require.Equal(t, "second", remaining.Body)
}

func TestSessionCommitEmptyIsNoop(t *testing.T) {
	session := NewSession(newSessionTestDB(t))
	require.NoError(t, session.Commit(context.Background()))
}

func TestSessionRollbackDiscardsStaged(t *testing.T) {
	db := newSessionTestDB(t)
	session := NewSession(db)
	ctx := context.Background()

	session.Add(&note{Body: "never stored"})
	session.Rollback()
	require.Equal(t, 0, session.Pending())

	require.NoError(t, session.Commit(ctx))
	count, err := db.NewSelect().Model((*note)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestSessionCommitFailureKeepsStaged(t *testing.T) {
	db := newSessionTestDB(t)
	session := NewSession(db)
	ctx := context.Background()

	session.Add(&note{Body: "dup"})
	session.Add(&note{Body: "dup"})

	err := session.Commit(ctx)
	require.Error(t, err)
	require.Equal(t, 2, session.Pending())

	// The transaction rolled back, nothing was stored.
	count, err := db.NewSelect().Model((*note)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	session.Rollback()
	require.Equal(t, 0, session.Pending())
}

func TestSessionUpdateByPrimaryKey(t *testing.T) {
	db := newSessionTestDB(t)
	session := NewSession(db)
	ctx := context.Background()

	n := &note{Body: "draft"}
	_, err := db.NewInsert().Model(n).Exec(ctx)
	require.NoError(t, err)

	n.Body = "final"
	session.Update(n)
	require.NoError(t, session.Commit(ctx))

	var stored note
	require.NoError(t, db.NewSelect().Model(&stored).Where("id = ?", n.ID).Scan(ctx))
	require.Equal(t, "final", stored.Body)
}

func TestSessionIdentity(t *testing.T) {
	db := newSessionTestDB(t)
	a := NewSession(db)
	b := NewSession(db)
	require.NotEmpty(t, a.ID())
	require.NotEqual(t, a.ID(), b.ID())
}
