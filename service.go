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

// Package heron provides generic data access over a relational database: a
// parameterized repository with session-staged mutations, a query filter
// mini-language, and a cached health-check HTTP surface.
package heron

import (
	"context"
	"sync"

	"github.com/tomoncle/heron/database"
	"github.com/tomoncle/heron/repository"
	"github.com/tomoncle/heron/types"
)

// Service is a convenience facade over a per-unit-of-work repository bound
// to the global database connection. Create and Remove stage mutations;
// Commit finalizes them. Update commits immediately.
type Service[T any] interface {
	// Create stages a new entity built from the given column values.
	Create(ctx context.Context, attrs map[string]interface{}) (*T, error)

	// All returns entities matching the query.
	All(ctx context.Context, q repository.Query) ([]*T, error)

	// GetBy returns entities whose field equals value.
	GetBy(ctx context.Context, field string, value interface{}, join types.JoinSet) ([]*T, error)

	// GetOneBy returns the single entity whose field equals value.
	GetOneBy(ctx context.Context, field string, value interface{}) (*T, error)

	// FirstBy returns the first entity whose field equals value, or nil.
	FirstBy(ctx context.Context, field string, value interface{}) (*T, error)

	// Update applies attrs to the entity and commits the unit of work.
	Update(ctx context.Context, model *T, attrs map[string]interface{}) (*T, error)

	// Remove stages the entity's deletion.
	Remove(ctx context.Context, model *T) error

	// Count returns the number of entities matching the query.
	Count(ctx context.Context, q repository.Query) (int, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// AsMap projects the entity's declared columns by name.
	AsMap(model *T) map[string]interface{}

	// Commit flushes staged mutations.
	Commit(ctx context.Context) error

	// Session returns the unit of work backing this service.
	Session() *database.Session
}

type baseServiceImpl[T any] struct {
	opts []repository.Option[T]
	repo repository.Repository[T]
	once sync.Once
}

// NewService returns a Service using the generic repository over a fresh
// session on the global database connection. Join registrations are passed
// through to the repository.
func NewService[T any](opts ...repository.Option[T]) Service[T] {
	return &baseServiceImpl[T]{opts: opts}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() {
		s.repo = repository.NewRepository[T](database.NewSession(database.GetDB()), s.opts...)
	})
	return s.repo
}

func (s *baseServiceImpl[T]) Create(ctx context.Context, attrs map[string]interface{}) (*T, error) {
	return s.baseRepo().Create(ctx, attrs)
}

func (s *baseServiceImpl[T]) All(ctx context.Context, q repository.Query) ([]*T, error) {
	return s.baseRepo().GetAll(ctx, q)
}

func (s *baseServiceImpl[T]) GetBy(ctx context.Context, field string, value interface{}, join types.JoinSet) ([]*T, error) {
	return s.baseRepo().GetBy(ctx, field, value, join)
}

func (s *baseServiceImpl[T]) GetOneBy(ctx context.Context, field string, value interface{}) (*T, error) {
	return s.baseRepo().GetOneBy(ctx, field, value)
}

func (s *baseServiceImpl[T]) FirstBy(ctx context.Context, field string, value interface{}) (*T, error) {
	return s.baseRepo().FirstBy(ctx, field, value)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T, attrs map[string]interface{}) (*T, error) {
	return s.baseRepo().Update(ctx, model, attrs)
}

func (s *baseServiceImpl[T]) Remove(ctx context.Context, model *T) error {
	return s.baseRepo().Delete(ctx, model)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, q repository.Query) (int, error) {
	return s.baseRepo().Count(ctx, q)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T]) AsMap(model *T) map[string]interface{} {
	return s.baseRepo().AsMap(model)
}

func (s *baseServiceImpl[T]) Commit(ctx context.Context) error {
	return s.baseRepo().Session().Commit(ctx)
}

func (s *baseServiceImpl[T]) Session() *database.Session {
	return s.baseRepo().Session()
}
