// Package schema, INFORMATION_SCHEMA üzerinden tablo, kolon, indeks ve
// yabancı anahtar sorgulayan ve bunları değiştiren DDL yardımcılarını içerir.
//
// Okuma yardımcıları novasql builder çağrılarının bileşimidir ve hatayı
// döndürür. Değiştiren yardımcılar tek bir DDL çalıştırır, başarısızlığı
// Warn seviyesinde loglar ve yalnızca false döndürür.
//
//	sc := schema.New(s, "shop")
//	if ok, _ := sc.TableExists(ctx, "orders"); !ok {
//	    sc.CreateTable(ctx, "orders", []schema.ColumnDef{
//	        {Name: "id", Type: "int NOT NULL AUTO_INCREMENT PRIMARY KEY"},
//	        {Name: "meta", Type: "longtext"},
//	    }, true)
//	}
package schema

import (
	"context"
	"log/slog"

	"github.com/biyonik/novasql"
	"github.com/biyonik/novasql/dialect"
)

// ColumnDef, CREATE TABLE ve ADD COLUMN için bir kolon tanımıdır. Type,
// "varchar(255) NOT NULL" gibi ham bir tip ifadesidir ve doğrulanmaz.
type ColumnDef struct {
	Name string
	Type string
}

// IndexSpec, CreateIndexes'e verilen tek kolonluk bir indekstir.
type IndexSpec struct {
	Column string
	Unique bool
}

// ForeignKey, çocuk tablo kolonundan ebeveyn tablo kolonuna giden bağlantıdır.
type ForeignKey struct {
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// Schema, bir session ve veritabanı adı üzerinde çalışan şema yardımcısıdır.
type Schema struct {
	session  *novasql.Session
	database string
	logger   *slog.Logger
}

// New, database adlı şema için bir Schema oluşturur.
func New(s *novasql.Session, database string) *Schema {
	return &Schema{
		session:  s,
		database: database,
		logger:   s.Logger().With("component", "schema", "database", database),
	}
}

// Database, sorguların filtrelendiği veritabanı adıdır.
func (sc *Schema) Database() string {
	return sc.database
}

// Session, yardımcıların çalıştığı session'dır.
func (sc *Schema) Session() *novasql.Session {
	return sc.session
}

// catalog, katalog tablosu için arşiv filtresi kapalı bir SELECT başlatır
// ve sonucu table_schema ile filtreler.
func (sc *Schema) catalog(table string, cols ...dialect.TableColumns) *novasql.Builder {
	return sc.session.New().
		Select(cols...).
		From(table).
		IncludeArchived().
		Where(dialect.Eq("table_schema"), novasql.P{"table_schema": sc.database})
}

// TableExists, tablonun veritabanında olup olmadığını bildirir.
func (sc *Schema) TableExists(ctx context.Context, table string) (bool, error) {
	return sc.catalog("INFORMATION_SCHEMA.TABLES").
		AndWhere(dialect.Eq("table_name"), novasql.P{"table_name": table}).
		ExistsContext(ctx)
}

// ColumnExists, kolonun tabloda olup olmadığını bildirir.
func (sc *Schema) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	return sc.catalog("INFORMATION_SCHEMA.COLUMNS").
		AndWhere(dialect.Eq("table_name"), novasql.P{"table_name": table}).
		AndWhere(dialect.Eq("column_name"), novasql.P{"column_name": column}).
		ExistsContext(ctx)
}

// ColumnInfo, INFORMATION_SCHEMA.COLUMNS'tan okunan kolon bilgisidir.
type ColumnInfo struct {
	Name     string  `db:"column_name"`
	Type     string  `db:"column_type"`
	Nullable string  `db:"is_nullable"`
	Key      string  `db:"column_key"`
	Default  *string `db:"column_default"`
}

// Columns, tablonun kolonlarını tablodaki sırasıyla döndürür.
func (sc *Schema) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	var cols []ColumnInfo
	err := sc.catalog("INFORMATION_SCHEMA.COLUMNS", dialect.Columns("INFORMATION_SCHEMA.COLUMNS",
		"column_name", "column_type", "is_nullable", "column_key", "column_default")).
		AndWhere(dialect.Eq("table_name"), novasql.P{"table_name": table}).
		OrderByAsc("ordinal_position").
		AllIntoContext(ctx, &cols)
	return cols, err
}

// FindPrimaryKey, birincil anahtar kolonunun adını döndürür; yoksa "".
func (sc *Schema) FindPrimaryKey(ctx context.Context, table string) (string, error) {
	return sc.catalog("INFORMATION_SCHEMA.COLUMNS", dialect.Columns("INFORMATION_SCHEMA.COLUMNS", "column_name")).
		AndWhere(dialect.Eq("table_name"), novasql.P{"table_name": table}).
		AndWhere(dialect.Eq("column_key"), novasql.P{"column_key": "PRI"}).
		ColumnContext(ctx)
}

// PrimaryKeyExists, column boşsa tablonun herhangi bir birincil anahtarı
// olup olmadığını, değilse birincil anahtarın column olup olmadığını bildirir.
func (sc *Schema) PrimaryKeyExists(ctx context.Context, table, column string) (bool, error) {
	pk, err := sc.FindPrimaryKey(ctx, table)
	if err != nil {
		return false, err
	}
	if column == "" {
		return pk != "", nil
	}
	return pk == column, nil
}

// constraints, FOREIGN KEY kısıtlarını kolon kullanımlarıyla birleştiren
// temel sorgudur.
func (sc *Schema) constraints(cols ...dialect.TableColumns) *novasql.Builder {
	return sc.session.New().
		Select(cols...).
		From("INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc").
		LeftJoin("INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu", dialect.And(
			dialect.On("tc.CONSTRAINT_NAME", "kcu.CONSTRAINT_NAME"),
			dialect.On("tc.TABLE_SCHEMA", "kcu.TABLE_SCHEMA"),
		)).
		IncludeArchived().
		Where(dialect.Eq("CONSTRAINT_TYPE"), novasql.P{"CONSTRAINT_TYPE": "FOREIGN KEY"}).
		AndWhere(dialect.EqAs("tableSchema", "tc.table_schema"), novasql.P{"tableSchema": sc.database})
}

// FindForeignKey, verilen bağlantıyı kuran kısıtın adını döndürür; yoksa "".
func (sc *Schema) FindForeignKey(ctx context.Context, fk ForeignKey) (string, error) {
	return sc.constraints(dialect.Columns("tc", "CONSTRAINT_NAME")).
		AndWhere(dialect.EqAs("tableName", "tc.table_name"), novasql.P{"tableName": fk.Table}).
		AndWhere(dialect.EqAs("columnName", "kcu.column_name"), novasql.P{"columnName": fk.Column}).
		AndWhere(dialect.EqAs("refTableName", "kcu.referenced_table_name"), novasql.P{"refTableName": fk.RefTable}).
		AndWhere(dialect.EqAs("refColumnName", "kcu.referenced_column_name"), novasql.P{"refColumnName": fk.RefColumn}).
		ColumnContext(ctx)
}

// ForeignKeyExists, verilen bağlantının var olup olmadığını bildirir.
func (sc *Schema) ForeignKeyExists(ctx context.Context, fk ForeignKey) (bool, error) {
	name, err := sc.FindForeignKey(ctx, fk)
	return name != "", err
}

var foreignKeyColumns = []dialect.TableColumns{
	dialect.Columns("tc", "CONSTRAINT_NAME"),
	dialect.Columns("kcu", "TABLE_NAME", "COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"),
}

// FindForeignKeys, table üzerindeki yabancı anahtarları kısıt adına göre
// döndürür. column boş değilse yalnızca o kolonunkiler döner.
func (sc *Schema) FindForeignKeys(ctx context.Context, table, column string) (map[string]ForeignKey, error) {
	b := sc.constraints(foreignKeyColumns...).
		AndWhere(dialect.EqAs("tableName", "tc.table_name"), novasql.P{"tableName": table})
	if column != "" {
		b.AndWhere(dialect.EqAs("columnName", "kcu.column_name"), novasql.P{"columnName": column})
	}
	return foreignKeys(ctx, b)
}

// FindForeignKeysTo, table'ı (ve verilmişse column'u) referans alan yabancı
// anahtarları döndürür.
func (sc *Schema) FindForeignKeysTo(ctx context.Context, table, column string) (map[string]ForeignKey, error) {
	b := sc.constraints(foreignKeyColumns...).
		AndWhere(dialect.EqAs("refTableName", "kcu.referenced_table_name"), novasql.P{"refTableName": table})
	if column != "" {
		b.AndWhere(dialect.EqAs("refColumnName", "kcu.referenced_column_name"), novasql.P{"refColumnName": column})
	}
	return foreignKeys(ctx, b)
}

func foreignKeys(ctx context.Context, b *novasql.Builder) (map[string]ForeignKey, error) {
	rows, err := b.AllContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ForeignKey, len(rows))
	for _, r := range rows {
		out[r.String("CONSTRAINT_NAME")] = ForeignKey{
			Table:     r.String("TABLE_NAME"),
			Column:    r.String("COLUMN_NAME"),
			RefTable:  r.String("REFERENCED_TABLE_NAME"),
			RefColumn: r.String("REFERENCED_COLUMN_NAME"),
		}
	}
	return out, nil
}

// statistics, PRIMARY dışındaki indeks satırlarını seçer.
func (sc *Schema) statistics(table string, cols ...string) *novasql.Builder {
	return sc.catalog("INFORMATION_SCHEMA.STATISTICS", dialect.Columns("INFORMATION_SCHEMA.STATISTICS", cols...)).
		AndWhere(dialect.Eq("table_name"), novasql.P{"table_name": table}).
		AndWhere(dialect.Cmp(dialect.OpNotEq, "index_name"), novasql.P{"index_name": "PRIMARY"})
}

// FindIndex, column üzerindeki ilk ikincil indeksin adını döndürür; yoksa "".
func (sc *Schema) FindIndex(ctx context.Context, table, column string) (string, error) {
	return sc.statistics(table, "INDEX_NAME").
		AndWhere(dialect.Eq("column_name"), novasql.P{"column_name": column}).
		ColumnContext(ctx)
}

// FindIndexes, tablodaki ikincil indeksleri kolonlarıyla birlikte döndürür.
// Çok kolonlu indekslerde kolonlar indeks içi sırayı izler.
func (sc *Schema) FindIndexes(ctx context.Context, table string) (map[string][]string, error) {
	rows, err := sc.statistics(table, "INDEX_NAME", "COLUMN_NAME").
		OrderByAsc("INDEX_NAME").
		OrderByAsc("SEQ_IN_INDEX").
		AllContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, r := range rows {
		name := r.String("INDEX_NAME")
		out[name] = append(out[name], r.String("COLUMN_NAME"))
	}
	return out, nil
}

// IndexExists, column üzerinde ikincil bir indeks olup olmadığını bildirir.
func (sc *Schema) IndexExists(ctx context.Context, table, column string) (bool, error) {
	name, err := sc.FindIndex(ctx, table, column)
	return name != "", err
}
