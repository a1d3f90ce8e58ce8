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
	"sort"
	"strings"
)

// ConditionKind discriminates the supported filter condition shapes.
type ConditionKind int

const (
	ConditionEquals ConditionKind = iota
	ConditionBetween
)

// Condition is a tagged filter variant: either an equality match or an
// inclusive range over a single column. The variant is decided at the call
// site, so no runtime shape inspection is needed when building the query.
type Condition struct {
	Kind  ConditionKind
	Value interface{}
	Low   interface{}
	High  interface{}
}

// Eq returns an equality condition.
func Eq(value interface{}) Condition {
	return Condition{Kind: ConditionEquals, Value: value}
}

// Between returns an inclusive range condition. Both bounds are required;
// open-ended ranges are not supported.
func Between(low, high interface{}) Condition {
	return Condition{Kind: ConditionBetween, Low: low, High: high}
}

// Where maps column names to filter conditions. Conditions are combined
// with AND. Keys must name declared columns on the target model; unknown
// keys are a caller error surfaced by the repository.
type Where map[string]Condition

// Columns returns the filtered column names in sorted order so that the
// generated SQL is deterministic.
func (w Where) Columns() []string {
	columns := make([]string, 0, len(w))
	for column := range w {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// Direction is a sort direction parsed case-insensitively from asc/desc.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// ParseDirection parses a sort direction. Anything that is not "desc"
// (case-insensitive) sorts ascending, mirroring the permissive behavior of
// the query layer this package fronts.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Order is a single-column ordering spec.
type Order struct {
	Column          string
	Direction       Direction
	CaseInsensitive bool
}

// OrderBy returns an ascending order on the given column.
func OrderBy(column string) *Order {
	return &Order{Column: column}
}

// OrderByDesc returns a descending order on the given column.
func OrderByDesc(column string) *Order {
	return &Order{Column: column, Direction: Desc}
}

// MultiOrder is a multi-column ordering spec. When both lists are set,
// the ascending list wins and the descending list is ignored.
type MultiOrder struct {
	Asc  []string
	Desc []string
}

// Columns returns the effective column list and its direction.
func (m *MultiOrder) Columns() ([]string, Direction) {
	if len(m.Asc) > 0 {
		return m.Asc, Asc
	}
	return m.Desc, Desc
}

// JoinSet is a set of relation names to expand when querying. Each name
// must be registered on the repository; unregistered names are a caller
// error.
type JoinSet map[string]struct{}

// NewJoinSet builds a join set from relation names.
func NewJoinSet(names ...string) JoinSet {
	set := make(JoinSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Add inserts a relation name into the set.
func (s JoinSet) Add(name string) { s[name] = struct{}{} }

// Contains reports whether the set holds the given relation name.
func (s JoinSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the relation names in sorted order for deterministic
// join application.
func (s JoinSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
