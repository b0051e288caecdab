package novasql

import (
	"database/sql"
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------------
// Application Context
// ----------------------------------------------------------------------------

// AppContext, session'ın hangi bağlamda çalıştığını belirtir.
//
// ContextServing (varsayılan) SELECT'lere arşiv filtresini otomatik ekler.
// ContextOperator, CLI ve bakım işleri içindir; arşivlenmiş satırlar da görünür.
type AppContext string

const (
	ContextServing  AppContext = "serving"
	ContextOperator AppContext = "operator"
)

// ParseAppContext, yapılandırmadan gelen bağlam adını çözümler. Boş değer
// ContextServing kabul edilir.
func ParseAppContext(s string) (AppContext, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ContextServing), "api":
		return ContextServing, nil
	case string(ContextOperator), "cli":
		return ContextOperator, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAppContext, s)
	}
}

// FiltersArchived, bu bağlamda arşiv filtresinin uygulanıp uygulanmadığını bildirir.
func (c AppContext) FiltersArchived() bool {
	return c == ContextServing
}

// ----------------------------------------------------------------------------
// Query Result Types
// ----------------------------------------------------------------------------

// QueryResult, INSERT, UPDATE veya DELETE sonucunda dönen sql.Result'ı sarar.
type QueryResult struct {
	result sql.Result
}

// NewQueryResult, ham sql.Result'tan bir QueryResult oluşturur.
func NewQueryResult(result sql.Result) *QueryResult {
	return &QueryResult{result: result}
}

// LastInsertID, son eklenen kaydın AUTO_INCREMENT değerini döndürür.
func (r *QueryResult) LastInsertID() (int64, error) {
	if r == nil || r.result == nil {
		return 0, ErrNoRows
	}
	return r.result.LastInsertId()
}

// RowsAffected, etkilenen satır sayısını döndürür. Bağlantı ClientFoundRows
// ile açıldığından UPDATE'lerde değişmeyen ama eşleşen satırlar da sayılır.
func (r *QueryResult) RowsAffected() (int64, error) {
	if r == nil || r.result == nil {
		return 0, ErrNoRows
	}
	return r.result.RowsAffected()
}

// ----------------------------------------------------------------------------
// Pagination Types
// ----------------------------------------------------------------------------

// Pagination, sayfalama meta verisini ve LIMIT/OFFSET hesabını taşır.
type Pagination struct {
	Page       int   // Mevcut sayfa numarası (1'den başlar)
	PerPage    int   // Sayfa başına kayıt sayısı
	Total      int64 // Toplam kayıt sayısı
	TotalPages int   // Hesaplanan toplam sayfa sayısı
	HasMore    bool  // Sonraki sayfa var mı
}

// NewPagination, geçersiz parametreleri varsayılanlara çekerek bir
// Pagination oluşturur.
func NewPagination(page, perPage int, total int64) *Pagination {
	if perPage <= 0 {
		perPage = 15
	}
	if page <= 0 {
		page = 1
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	return &Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// Offset, atlanacak kayıt sayısıdır: (Page - 1) * PerPage.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev, önceki sayfa olup olmadığını bildirir.
func (p *Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext, sonraki sayfa olup olmadığını bildirir.
func (p *Pagination) HasNext() bool {
	return p.HasMore
}

// Page, bir sayfanın satırlarını ve meta verisini birlikte taşır.
type Page struct {
	*Pagination
	Rows []Row
}
