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

package heron

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/heron/database"
	"github.com/tomoncle/heron/repository"
	"github.com/tomoncle/heron/types"
	"github.com/uptrace/bun"
)

type product struct {
	bun.BaseModel `bun:"table:products,alias:product"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Price     int       `bun:"price" json:"price"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func TestMain(m *testing.M) {
	database.RegisteredModel(database.NewModelAdapter(&product{}, 1))

	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.CreateSchemaOnBoot = true
	if _, err := database.InitDB(cfg); err != nil {
		panic(err)
	}

	code := m.Run()
	_ = database.CloseDB()
	os.Exit(code)
}

func TestServiceLifecycle(t *testing.T) {
	svc := NewService[product]()
	ctx := context.Background()

	created, err := svc.Create(ctx, map[string]interface{}{"name": "lamp", "price": 30})
	require.NoError(t, err)
	require.NoError(t, svc.Commit(ctx))
	require.NotZero(t, created.ID)

	stored, err := svc.GetOneBy(ctx, "name", "lamp")
	require.NoError(t, err)
	require.Equal(t, 30, stored.Price)

	updated, err := svc.Update(ctx, stored, map[string]interface{}{"price": 25})
	require.NoError(t, err)
	require.Equal(t, 25, updated.Price)
	require.Equal(t, 0, svc.Session().Pending())

	m := svc.AsMap(updated)
	require.Equal(t, "lamp", m["name"])
	require.Equal(t, 25, m["price"])

	count, err := svc.Count(ctx, repository.Query{Where: types.Where{"price": types.Between(20, 30)}})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, svc.Remove(ctx, updated))
	require.NoError(t, svc.Commit(ctx))

	missing, err := svc.FirstBy(ctx, "name", "lamp")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestServicePagination(t *testing.T) {
	svc := NewService[product]()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, map[string]interface{}{"name": "bulk", "price": i})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Commit(ctx))

	page, err := svc.Page(ctx, types.NewPageRequest(1, 2, types.Where{"name": types.Eq("bulk")}, types.OrderByDesc("price")))
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, 4, page.Items[0].Price)
}
