package migrate

import (
	"context"
	"fmt"

	"github.com/biyonik/novasql/schema"
)

// Defaults, uygulamanın taban migration'larıdır.
func Defaults() []Migration {
	return []Migration{BaseTableSetup()}
}

// BaseTableSetup, auth_tokens, idempotent_requests, info ve migrations
// tablolarını oluşturur. Geri alınamaz.
func BaseTableSetup() Migration {
	return Migration{
		Name: "M220614171406BaseTableSetup",
		Up:   baseTableSetupUp,
	}
}

var baseTables = []struct {
	name    string
	columns []schema.ColumnDef
	pk      string
}{
	{
		name: "auth_tokens",
		columns: []schema.ColumnDef{
			{Name: "token_id", Type: "char(36) NOT NULL"},
			{Name: "token", Type: "text NOT NULL"},
			{Name: "expiry", Type: "timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP"},
			{Name: "meta", Type: "longtext"},
		},
		pk: "token_id",
	},
	{
		name: "idempotent_requests",
		columns: []schema.ColumnDef{
			{Name: "idempotency_key", Type: "char(36) NOT NULL"},
			{Name: "route", Type: "longtext NOT NULL"},
			{Name: "body", Type: "longtext NOT NULL"},
			{Name: "headers", Type: "longtext"},
			{Name: "status_code", Type: "varchar(20) NOT NULL"},
			{Name: "expiry", Type: "timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP"},
			{Name: "meta", Type: "longtext"},
		},
		pk: "idempotency_key",
	},
	{
		name: "info",
		columns: []schema.ColumnDef{
			{Name: "id", Type: "int NOT NULL AUTO_INCREMENT PRIMARY KEY"},
			{Name: "name", Type: "varchar(255)"},
			{Name: "value", Type: "longtext"},
			{Name: "date_created", Type: "timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP"},
			{Name: "date_updated", Type: "timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"},
			{Name: "meta", Type: "longtext"},
		},
		pk: "id",
	},
	{
		name: Table,
		columns: []schema.ColumnDef{
			{Name: "migration_id", Type: "int NOT NULL AUTO_INCREMENT PRIMARY KEY"},
			{Name: "migration_name", Type: "varchar(255) NOT NULL"},
			{Name: "migration_batch", Type: "int NOT NULL"},
			{Name: "date_applied", Type: "timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP"},
			{Name: "meta", Type: "longtext"},
		},
		pk: "migration_id",
	},
}

// baseTableSetupUp yalnızca CREATE TABLE hatalarında başarısız olur.
// Anahtar ve indeks adımları zaten varsa false döner ve bu beklenen bir
// durumdur.
func baseTableSetupUp(ctx context.Context, sc *schema.Schema) error {
	for _, t := range baseTables {
		if !sc.CreateTable(ctx, t.name, t.columns, true) {
			return fmt.Errorf("create table %s failed", t.name)
		}
	}
	for _, t := range baseTables {
		sc.AddPrimaryKey(ctx, t.name, t.pk)
	}
	sc.CreateIndex(ctx, "info", "name", true)
	sc.CreateIndexes(ctx, Table, []schema.IndexSpec{
		{Column: "migration_batch"},
		{Column: "migration_name", Unique: true},
	})
	return nil
}
