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
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type mutationKind int

const (
	mutationInsert mutationKind = iota
	mutationUpdate
	mutationDelete
)

func (k mutationKind) String() string {
	switch k {
	case mutationInsert:
		return "insert"
	case mutationUpdate:
		return "update"
	case mutationDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type stagedMutation struct {
	kind  mutationKind
	model interface{}
}

// Session is a unit of work over a shared database connection. Add, Update,
// and Delete record staged mutations; nothing touches the database until
// Commit flushes them inside a single transaction, in staging order.
// Rollback discards the staged mutations without touching the database.
//
// A session is scoped to one logical owner (typically one request).
// Concurrent requests must obtain independent sessions.
type Session struct {
	id     string
	db     *bun.DB
	logger Logger

	mu     sync.Mutex
	staged []stagedMutation
}

// NewSession returns a unit of work over the given connection.
func NewSession(db *bun.DB) *Session {
	return &Session{
		id:     uuid.NewString(),
		db:     db,
		logger: GetLogger(),
	}
}

// ID returns the session identity used for log correlation.
func (s *Session) ID() string { return s.id }

// DB exposes the query surface. Reads bypass staged mutations: staged
// inserts and deletes are invisible to queries until Commit.
func (s *Session) DB() bun.IDB { return s.db }

// Bun returns the underlying Bun connection, used for schema metadata.
func (s *Session) Bun() *bun.DB { return s.db }

// Add stages an insert for the given model.
func (s *Session) Add(model interface{}) {
	s.stage(mutationInsert, model)
}

// Update stages an update for the given model, matched by primary key.
func (s *Session) Update(model interface{}) {
	s.stage(mutationUpdate, model)
}

// Delete stages a deletion for the given model, matched by primary key.
func (s *Session) Delete(model interface{}) {
	s.stage(mutationDelete, model)
}

// Pending returns the number of staged mutations.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

// Rollback discards all staged mutations.
func (s *Session) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.staged) > 0 {
		s.logger.Debug("Session rollback", "session", s.id, "discarded", len(s.staged))
	}
	s.staged = nil
}

// Commit flushes every staged mutation inside one transaction and clears
// the buffer. On failure the transaction is rolled back and the staged
// mutations are kept, so the caller can decide to retry or Rollback.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	staged := s.staged
	s.mu.Unlock()

	if len(staged) == 0 {
		return nil
	}

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, mutation := range staged {
			var err error
			switch mutation.kind {
			case mutationInsert:
				_, err = tx.NewInsert().Model(mutation.model).Exec(ctx)
			case mutationUpdate:
				_, err = tx.NewUpdate().Model(mutation.model).WherePK().Exec(ctx)
			case mutationDelete:
				_, err = tx.NewDelete().Model(mutation.model).WherePK().Exec(ctx)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Session commit failed", "session", s.id, "staged", len(staged), "error", err)
		return err
	}

	s.mu.Lock()
	s.staged = nil
	s.mu.Unlock()
	s.logger.Debug("Session committed", "session", s.id, "flushed", len(staged))
	return nil
}

func (s *Session) stage(kind mutationKind, model interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, stagedMutation{kind: kind, model: model})
}
