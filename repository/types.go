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

package repository

import (
	"context"
	"errors"

	"github.com/tomoncle/heron/database"
	"github.com/tomoncle/heron/types"

	"github.com/uptrace/bun"
)

// DefaultLimit caps GetAll result sets when the caller does not set one.
const DefaultLimit = 100

var (
	// ErrUnknownField is returned when a filter, order, or attribute key
	// does not name a declared column on the model.
	ErrUnknownField = errors.New("unknown model field")

	// ErrUnknownJoin is returned when a join set entry has no registered
	// join function on the repository.
	ErrUnknownJoin = errors.New("unknown join relation")

	// ErrNoResult is returned when exactly one row was required and none
	// matched.
	ErrNoResult = errors.New("no result found")

	// ErrMultipleResults is returned when exactly one row was required
	// and more than one matched.
	ErrMultipleResults = errors.New("multiple results found")

	// ErrInvalidPage is returned for negative skip or limit values.
	ErrInvalidPage = errors.New("skip and limit must be non-negative")

	// ErrInvalidAttribute is returned when an attribute value cannot be
	// assigned to its column's Go type.
	ErrInvalidAttribute = errors.New("attribute value not assignable to column")
)

// JoinFunc expands a select query with one relation. Join functions are
// registered by name at construction time and dispatched from the query's
// join set.
type JoinFunc func(*bun.SelectQuery) *bun.SelectQuery

// Query describes a GetAll/Count request: pagination, relation expansion,
// filter conditions, and ordering. Order and MultiOrder are mutually
// exclusive; Order wins when both are set.
type Query struct {
	Skip       int
	Limit      int
	Join       types.JoinSet
	Where      types.Where
	Order      *types.Order
	MultiOrder *types.MultiOrder
}

// CrudRepository defines the session-staged CRUD operations for a generic
// entity type. Create and Delete only stage their mutation in the unit of
// work; Update applies its attributes and commits the whole unit of work
// immediately. Callers batching Create/Delete must call Session().Commit.
type CrudRepository[T any] interface {
	// Create instantiates the model with the given column values (missing
	// columns keep their declared defaults) and stages the insert.
	Create(ctx context.Context, attrs map[string]interface{}) (*T, error)

	// Update sets only attrs that name declared columns, silently ignoring
	// unknown keys, stages the update, and commits the unit of work.
	Update(ctx context.Context, model *T, attrs map[string]interface{}) (*T, error)

	// Delete stages the model's deletion.
	Delete(ctx context.Context, model *T) error
}

// QueryRepository defines the read operations for a generic entity type.
type QueryRepository[T any] interface {
	// GetAll returns matching entities. Joined results are de-duplicated
	// by primary key.
	GetAll(ctx context.Context, q Query) ([]*T, error)

	// GetBy returns all entities whose field equals value, with optional
	// relation expansion.
	GetBy(ctx context.Context, field string, value interface{}, join types.JoinSet) ([]*T, error)

	// GetOneBy returns the single entity whose field equals value. Zero
	// matches yield ErrNoResult, more than one ErrMultipleResults.
	GetOneBy(ctx context.Context, field string, value interface{}) (*T, error)

	// FirstBy returns the first matching entity or nil when none match.
	FirstBy(ctx context.Context, field string, value interface{}) (*T, error)

	// Count wraps the filtered query as a subquery and counts its rows.
	Count(ctx context.Context, q Query) (int, error)
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines staged CRUD, querying, and pagination over a single
// unit-of-work session, and exposes the model's column projection.
type Repository[T any] interface {
	CrudRepository[T]
	QueryRepository[T]
	PageQueryRepository[T]

	// AsMap projects every declared column of the model to its current
	// value, keyed by column name.
	AsMap(model *T) map[string]interface{}

	// Session returns the unit of work this repository operates on.
	Session() *database.Session
}
