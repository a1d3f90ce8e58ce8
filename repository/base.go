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
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/tomoncle/heron/database"
	"github.com/tomoncle/heron/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	session *database.Session
	joins   map[string]JoinFunc
}

// Option configures a repository at construction time.
type Option[T any] func(*baseRepositoryImpl[T])

// WithJoin registers a join function under the given relation name. The
// name becomes valid in query join sets.
func WithJoin[T any](name string, fn JoinFunc) Option[T] {
	return func(r *baseRepositoryImpl[T]) {
		r.joins[name] = fn
	}
}

// NewRepository returns a generic repository bound to the given unit-of-work
// session. The repository borrows the session; it is constructed per unit
// of work and discarded after.
func NewRepository[T any](session *database.Session, opts ...Option[T]) Repository[T] {
	r := &baseRepositoryImpl[T]{
		session: session,
		joins:   make(map[string]JoinFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *baseRepositoryImpl[T]) Session() *database.Session { return r.session }

func (r *baseRepositoryImpl[T]) table() *schema.Table {
	var model T
	return r.session.Bun().Table(reflect.TypeOf(model))
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, attrs map[string]interface{}) (*T, error) {
	model := new(T)
	if err := r.applyAttrs(model, attrs, true); err != nil {
		return nil, err
	}
	r.session.Add(model)
	return model, nil
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, model *T, attrs map[string]interface{}) (*T, error) {
	if err := r.applyAttrs(model, attrs, false); err != nil {
		return nil, err
	}
	r.session.Update(model)
	if err := r.session.Commit(ctx); err != nil {
		return nil, err
	}
	return model, nil
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, model *T) error {
	r.session.Delete(model)
	return nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context, q Query) ([]*T, error) {
	if q.Skip < 0 || q.Limit < 0 {
		return nil, ErrInvalidPage
	}
	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	var entities []*T
	query := r.session.DB().NewSelect().Model(&entities)
	query, err := r.maybeJoin(query, q.Join)
	if err != nil {
		return nil, err
	}
	query = query.Offset(q.Skip).Limit(limit)
	if query, err = r.applyWhere(query, q.Where); err != nil {
		return nil, err
	}
	if query, err = r.maybeOrdered(query, q.Order, q.MultiOrder); err != nil {
		return nil, err
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	if len(q.Join) > 0 {
		return r.unique(entities), nil
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) GetBy(ctx context.Context, field string, value interface{}, join types.JoinSet) ([]*T, error) {
	var entities []*T
	query := r.session.DB().NewSelect().Model(&entities)
	query, err := r.maybeJoin(query, join)
	if err != nil {
		return nil, err
	}
	if query, err = r.whereField(query, field, value); err != nil {
		return nil, err
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	if len(join) > 0 {
		return r.unique(entities), nil
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) GetOneBy(ctx context.Context, field string, value interface{}) (*T, error) {
	entities, err := r.limitedBy(ctx, field, value, 2)
	if err != nil {
		return nil, err
	}
	switch len(entities) {
	case 0:
		return nil, fmt.Errorf("%w: %s=%v", ErrNoResult, field, value)
	case 1:
		return entities[0], nil
	default:
		return nil, fmt.Errorf("%w: %s=%v", ErrMultipleResults, field, value)
	}
}

func (r *baseRepositoryImpl[T]) FirstBy(ctx context.Context, field string, value interface{}) (*T, error) {
	entities, err := r.limitedBy(ctx, field, value, 1)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}
	return entities[0], nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, q Query) (int, error) {
	sub := r.session.DB().NewSelect().Model((*T)(nil))
	sub, err := r.maybeJoin(sub, q.Join)
	if err != nil {
		return 0, err
	}
	if sub, err = r.applyWhere(sub, q.Where); err != nil {
		return 0, err
	}

	var count int
	err = r.session.DB().NewSelect().
		ColumnExpr("count(*)").
		TableExpr("(?) AS matched", sub).
		Scan(ctx, &count)
	return count, err
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	pagination := types.NewDefaultPagination[T](page.GetPage(), page.GetPageSize())
	total, err := r.Count(ctx, Query{Where: page.GetWhere()})
	if err != nil || total == 0 {
		return pagination, err
	}

	items, err := r.GetAll(ctx, Query{
		Skip:  page.GetOffset(),
		Limit: page.GetPageSize(),
		Where: page.GetWhere(),
		Order: page.GetOrder(),
	})
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = items
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) AsMap(model *T) map[string]interface{} {
	table := r.table()
	strct := reflect.ValueOf(model).Elem()
	out := make(map[string]interface{}, len(table.Fields))
	for _, field := range table.Fields {
		out[field.Name] = field.Value(strct).Interface()
	}
	return out
}

// applyAttrs sets column values on the model by column name. In strict mode
// an unknown name is an error; otherwise it is skipped.
func (r *baseRepositoryImpl[T]) applyAttrs(model *T, attrs map[string]interface{}, strict bool) error {
	if len(attrs) == 0 {
		return nil
	}
	table := r.table()
	strct := reflect.ValueOf(model).Elem()
	for _, name := range sortedKeys(attrs) {
		field, ok := table.FieldMap[name]
		if !ok {
			if strict {
				return fmt.Errorf("%w: %s.%s", ErrUnknownField, table.TypeName, name)
			}
			continue
		}
		if err := setFieldValue(field, strct, attrs[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) limitedBy(ctx context.Context, field string, value interface{}, limit int) ([]*T, error) {
	var entities []*T
	query := r.session.DB().NewSelect().Model(&entities)
	query, err := r.whereField(query, field, value)
	if err != nil {
		return nil, err
	}
	if err := query.Limit(limit).Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) whereField(query *bun.SelectQuery, field string, value interface{}) (*bun.SelectQuery, error) {
	table := r.table()
	if _, ok := table.FieldMap[field]; !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, table.TypeName, field)
	}
	return query.Where("?TableAlias.? = ?", bun.Ident(field), value), nil
}

func (r *baseRepositoryImpl[T]) applyWhere(query *bun.SelectQuery, where types.Where) (*bun.SelectQuery, error) {
	if len(where) == 0 {
		return query, nil
	}
	table := r.table()
	for _, column := range where.Columns() {
		if _, ok := table.FieldMap[column]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, table.TypeName, column)
		}
		cond := where[column]
		switch cond.Kind {
		case types.ConditionBetween:
			query = query.Where("?TableAlias.? BETWEEN ? AND ?", bun.Ident(column), cond.Low, cond.High)
		default:
			query = query.Where("?TableAlias.? = ?", bun.Ident(column), cond.Value)
		}
	}
	return query, nil
}

func (r *baseRepositoryImpl[T]) maybeJoin(query *bun.SelectQuery, join types.JoinSet) (*bun.SelectQuery, error) {
	if len(join) == 0 {
		return query, nil
	}
	for _, name := range join.Names() {
		fn, ok := r.joins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownJoin, name)
		}
		query = fn(query)
	}
	return query, nil
}

func (r *baseRepositoryImpl[T]) maybeOrdered(query *bun.SelectQuery, order *types.Order, multi *types.MultiOrder) (*bun.SelectQuery, error) {
	if order != nil {
		return r.sortBy(query, order.Column, order.Direction, order.CaseInsensitive)
	}
	if multi == nil {
		return query, nil
	}
	columns, direction := multi.Columns()
	var err error
	for _, column := range columns {
		if query, err = r.sortBy(query, column, direction, false); err != nil {
			return nil, err
		}
	}
	return query, nil
}

func (r *baseRepositoryImpl[T]) sortBy(query *bun.SelectQuery, column string, direction types.Direction, caseInsensitive bool) (*bun.SelectQuery, error) {
	table := r.table()
	if _, ok := table.FieldMap[column]; !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, table.TypeName, column)
	}
	if caseInsensitive {
		return query.OrderExpr("LOWER(?TableAlias.?) "+direction.String(), bun.Ident(column)), nil
	}
	return query.OrderExpr("?TableAlias.? "+direction.String(), bun.Ident(column)), nil
}

// unique collapses rows multiplied by joins back to one entry per distinct
// primary key, keeping first-seen order.
func (r *baseRepositoryImpl[T]) unique(entities []*T) []*T {
	table := r.table()
	if len(table.PKs) == 0 || len(entities) < 2 {
		return entities
	}
	seen := make(map[string]struct{}, len(entities))
	out := make([]*T, 0, len(entities))
	for _, entity := range entities {
		strct := reflect.ValueOf(entity).Elem()
		var key strings.Builder
		for _, pk := range table.PKs {
			fmt.Fprintf(&key, "%v|", pk.Value(strct).Interface())
		}
		if _, ok := seen[key.String()]; ok {
			continue
		}
		seen[key.String()] = struct{}{}
		out = append(out, entity)
	}
	return out
}

func setFieldValue(field *schema.Field, strct reflect.Value, value interface{}) error {
	fv := field.Value(strct)
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(fv.Type()):
		fv.Set(rv)
	case rv.Type().ConvertibleTo(fv.Type()):
		fv.Set(rv.Convert(fv.Type()))
	default:
		return fmt.Errorf("%w: %s wants %s, got %T", ErrInvalidAttribute, field.Name, fv.Type(), value)
	}
	return nil
}

func sortedKeys(attrs map[string]interface{}) []string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	// Deterministic application order keeps error messages stable.
	sort.Strings(keys)
	return keys
}
