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
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates a table for every registered model in ascending
// priority order. Existing tables are left untouched.
func CreateSchema(ctx context.Context, db *bun.DB, logger Logger) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	for _, model := range GetRegisteredModels() {
		instance := model.Instance()
		if _, err := db.NewCreateTable().Model(instance).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", instance, err)
		}
		if logger != nil {
			logger.Debug("Schema table ensured", "model", fmt.Sprintf("%T", instance))
		}
	}
	return nil
}

// DropSchema drops the table of every registered model in descending
// priority order. Intended for tests.
func DropSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	models := GetRegisteredModels()
	for i := len(models) - 1; i >= 0; i-- {
		instance := models[i].Instance()
		if _, err := db.NewDropTable().Model(instance).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", instance, err)
		}
	}
	return nil
}
