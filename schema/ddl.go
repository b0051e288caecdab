package schema

import (
	"context"
	"strings"

	"github.com/biyonik/novasql/internal/validation"
)

// exec, tek bir DDL çalıştırır. Hata loglanır ve false döner.
func (sc *Schema) exec(ctx context.Context, op, query string) bool {
	if _, err := sc.session.New().SetRawSQL(query).ExecuteContext(ctx); err != nil {
		sc.logger.WarnContext(ctx, "schema change failed", "op", op, "sql", query, "error", err)
		return false
	}
	return true
}

// valid, DDL'e yazılacak tanımlayıcıları doğrular. Geçersiz bir ad I/O
// yapılmadan loglanır.
func (sc *Schema) valid(ctx context.Context, op string, ids ...string) bool {
	for _, id := range ids {
		if err := validation.ValidateIdentifier(id); err != nil {
			sc.logger.WarnContext(ctx, "schema change rejected", "op", op, "error", err)
			return false
		}
	}
	return true
}

// lookupFailed, ön kontrol sorgusunun hatasını loglar.
func (sc *Schema) lookupFailed(ctx context.Context, op string, err error) bool {
	sc.logger.WarnContext(ctx, "schema lookup failed", "op", op, "error", err)
	return false
}

// CreateTable, tabloyu verilen kolonlarla oluşturur.
func (sc *Schema) CreateTable(ctx context.Context, table string, columns []ColumnDef, ifNotExists bool) bool {
	const op = "create table"
	if len(columns) == 0 {
		sc.logger.WarnContext(ctx, "schema change rejected", "op", op, "table", table, "error", "no columns")
		return false
	}
	ids := []string{table}
	defs := make([]string, len(columns))
	for i, c := range columns {
		ids = append(ids, c.Name)
		defs[i] = c.Name + " " + c.Type
	}
	if !sc.valid(ctx, op, ids...) {
		return false
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(table + " (" + strings.Join(defs, ", ") + ")")
	return sc.exec(ctx, op, b.String())
}

// RenameTable, tabloyu yeniden adlandırır.
func (sc *Schema) RenameTable(ctx context.Context, oldName, newName string) bool {
	if !sc.valid(ctx, "rename table", oldName, newName) {
		return false
	}
	return sc.exec(ctx, "rename table", "RENAME TABLE "+oldName+" TO "+newName)
}

// DropTable, tabloyu siler.
func (sc *Schema) DropTable(ctx context.Context, table string) bool {
	if !sc.valid(ctx, "drop table", table) {
		return false
	}
	return sc.exec(ctx, "drop table", "DROP TABLE "+table)
}

// RenameColumn, tablodaki bir kolonu yeniden adlandırır.
func (sc *Schema) RenameColumn(ctx context.Context, table, oldName, newName string) bool {
	if !sc.valid(ctx, "rename column", table, oldName, newName) {
		return false
	}
	return sc.exec(ctx, "rename column", "ALTER TABLE "+table+" RENAME COLUMN "+oldName+" TO "+newName)
}

// AddColumn, tabloya kolon ekler. ifNotExists true ise ve kolon zaten
// varsa hiçbir şey yapmadan false döner.
func (sc *Schema) AddColumn(ctx context.Context, table string, column ColumnDef, ifNotExists bool) bool {
	const op = "add column"
	if !sc.valid(ctx, op, table, column.Name) {
		return false
	}
	if ifNotExists {
		exists, err := sc.ColumnExists(ctx, table, column.Name)
		if err != nil {
			return sc.lookupFailed(ctx, op, err)
		}
		if exists {
			return false
		}
	}
	return sc.exec(ctx, op, "ALTER TABLE "+table+" ADD "+column.Name+" "+column.Type)
}

// DropColumn, tablodan kolonu siler.
func (sc *Schema) DropColumn(ctx context.Context, table, column string) bool {
	if !sc.valid(ctx, "drop column", table, column) {
		return false
	}
	return sc.exec(ctx, "drop column", "ALTER TABLE "+table+" DROP COLUMN "+column)
}

// AddPrimaryKey, column'u birincil anahtar yapar. Birincil anahtar zaten
// column ise false döner.
func (sc *Schema) AddPrimaryKey(ctx context.Context, table, column string) bool {
	const op = "add primary key"
	if !sc.valid(ctx, op, table, column) {
		return false
	}
	exists, err := sc.PrimaryKeyExists(ctx, table, column)
	if err != nil {
		return sc.lookupFailed(ctx, op, err)
	}
	if exists {
		return false
	}
	return sc.exec(ctx, op, "ALTER TABLE "+table+" ADD PRIMARY KEY ("+column+")")
}

// DropPrimaryKey, tablonun birincil anahtarını kaldırır.
func (sc *Schema) DropPrimaryKey(ctx context.Context, table string) bool {
	if !sc.valid(ctx, "drop primary key", table) {
		return false
	}
	return sc.exec(ctx, "drop primary key", "ALTER TABLE "+table+" DROP PRIMARY KEY")
}

// ForeignKeyName, AddForeignKey'in kısıta verdiği addır: FK_<table>_<refTable>
// (küçük harfle).
func ForeignKeyName(fk ForeignKey) string {
	return "FK_" + strings.ToLower(fk.Table+"_"+fk.RefTable)
}

// AddForeignKey, yabancı anahtar ekler. onDelete ve onUpdate boş
// bırakılabilir; RESTRICT, CASCADE, NO ACTION, SET DEFAULT ve SET NULL
// dışındaki eylemler yazılmaz. Bağlantı zaten varsa false döner.
func (sc *Schema) AddForeignKey(ctx context.Context, fk ForeignKey, onDelete, onUpdate string) bool {
	const op = "add foreign key"
	if !sc.valid(ctx, op, fk.Table, fk.Column, fk.RefTable, fk.RefColumn) {
		return false
	}
	exists, err := sc.ForeignKeyExists(ctx, fk)
	if err != nil {
		return sc.lookupFailed(ctx, op, err)
	}
	if exists {
		return false
	}

	query := "ALTER TABLE " + fk.Table +
		" ADD CONSTRAINT " + ForeignKeyName(fk) +
		" FOREIGN KEY (" + fk.Column + ") REFERENCES " + fk.RefTable + "(" + fk.RefColumn + ")"
	if action, ok := validation.ReferentialAction(onDelete); ok {
		query += " ON DELETE " + action
	}
	if action, ok := validation.ReferentialAction(onUpdate); ok {
		query += " ON UPDATE " + action
	}
	return sc.exec(ctx, op, query)
}

// DropForeignKey, adı verilen yabancı anahtar kısıtını kaldırır.
func (sc *Schema) DropForeignKey(ctx context.Context, table, name string) bool {
	if !sc.valid(ctx, "drop foreign key", table, name) {
		return false
	}
	return sc.exec(ctx, "drop foreign key", "ALTER TABLE "+table+" DROP FOREIGN KEY "+name)
}

// IndexName, CreateIndex'in indekse verdiği addır.
func IndexName(column string) string {
	return column + "_index"
}

// CreateIndex, column üzerinde "<column>_index" adlı bir indeks oluşturur.
// Kolon zaten indeksliyse false döner.
func (sc *Schema) CreateIndex(ctx context.Context, table, column string, unique bool) bool {
	const op = "create index"
	if !sc.valid(ctx, op, table, column) {
		return false
	}
	exists, err := sc.IndexExists(ctx, table, column)
	if err != nil {
		return sc.lookupFailed(ctx, op, err)
	}
	if exists {
		return false
	}

	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	return sc.exec(ctx, op, "CREATE "+kind+" "+IndexName(column)+" ON "+table+" ("+column+")")
}

// CreateIndexes, indeksleri sırayla oluşturur ve ilk başarısızlıkta durur.
func (sc *Schema) CreateIndexes(ctx context.Context, table string, specs []IndexSpec) bool {
	for _, spec := range specs {
		if !sc.CreateIndex(ctx, table, spec.Column, spec.Unique) {
			return false
		}
	}
	return true
}

// DropIndex, tablodaki indeksi siler.
func (sc *Schema) DropIndex(ctx context.Context, table, name string) bool {
	if !sc.valid(ctx, "drop index", table, name) {
		return false
	}
	return sc.exec(ctx, "drop index", "DROP INDEX "+name+" ON "+table)
}
