// Package validation, builder'a verilen tablo, kolon ve alias isimlerini
// doğrulayan dahili yardımcıları içerir.
//
// Tanımlayıcılar SQL metnine parametre olarak değil, doğrudan yazılır. Bu
// nedenle güvenilmeyen bir girdi builder'a ulaşmadan önce buradaki allow-list
// kontrolünden geçirilmelidir. Session strict modda çalışıyorsa derleme
// sırasında aynı kontrol otomatik yapılır.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// identifierRegex; "column", "table.column" ve "schema.table.column"
// biçimlerini kabul eder.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*){0,2}$`)

// aliasRegex, "table alias" ve "table AS alias" biçimlerini eşler.
var aliasRegex = regexp.MustCompile(`(?i)^([a-zA-Z_][a-zA-Z0-9_.]*)\s+(?:as\s+)?([a-zA-Z_][a-zA-Z0-9_]*)$`)

// derivedRegex, "(SELECT ...) alias" biçimindeki türetilmiş tabloları eşler.
var derivedRegex = regexp.MustCompile(`(?is)^\((.+)\)\s+(?:as\s+)?([a-zA-Z_][a-zA-Z0-9_]*)$`)

// statementBreakers, türetilmiş tablo gövdesinde izin verilmeyen ifade
// ayraçları ve yorum işaretleridir.
var statementBreakers = []string{";", "--", "#", "/*", "*/"}

const maxIdentifierLength = 128

// ValidateIdentifier, verilen tanımlayıcının geçerli olup olmadığını kontrol eder.
func ValidateIdentifier(id string) error {
	if id == "" {
		return &IdentifierError{Identifier: id, Reason: "identifier cannot be empty"}
	}
	if len(id) > maxIdentifierLength {
		return &IdentifierError{Identifier: id, Reason: "identifier exceeds maximum length of 128 characters"}
	}
	if !identifierRegex.MatchString(id) {
		return &IdentifierError{
			Identifier: id,
			Reason:     "only letters, numbers, underscores and up to two dots are allowed",
		}
	}
	return nil
}

// ValidateColumn, "*" ve "table.*" projeksiyonlarına da izin vererek kolonu doğrular.
func ValidateColumn(column string) error {
	if column == "*" {
		return nil
	}
	if strings.HasSuffix(column, ".*") {
		return ValidateIdentifier(strings.TrimSuffix(column, ".*"))
	}
	return ValidateIdentifier(column)
}

// ValidateTableRef, bir tablo referansını doğrular ve adı ile alias'ını döndürür.
// Desteklenen biçimler: "table", "table alias", "table AS alias", "(subquery) alias".
// Türetilmiş tablolarda name boş döner; gövde tek bir parantez grubu olmalı,
// ifade ayracı ya da yorum içermemelidir. Baştaki ve sondaki boşluklar reddedilir.
func ValidateTableRef(table string) (name, alias string, err error) {
	if strings.TrimSpace(table) == "" {
		return "", "", &IdentifierError{Identifier: table, Reason: "table name cannot be empty"}
	}
	if strings.TrimSpace(table) != table {
		return "", "", &IdentifierError{Identifier: table, Reason: "surrounding whitespace is not allowed"}
	}

	if m := derivedRegex.FindStringSubmatch(table); m != nil {
		if err := validateDerivedBody(m[1]); err != nil {
			return "", "", &IdentifierError{Identifier: table, Reason: err.Error()}
		}
		return "", m[2], nil
	}

	if m := aliasRegex.FindStringSubmatch(table); m != nil {
		if err := ValidateIdentifier(m[1]); err != nil {
			return "", "", err
		}
		if err := ValidateIdentifier(m[2]); err != nil {
			return "", "", &IdentifierError{Identifier: m[2], Reason: "invalid alias"}
		}
		return m[1], m[2], nil
	}

	if err := ValidateIdentifier(table); err != nil {
		return "", "", err
	}
	return table, "", nil
}

func validateDerivedBody(body string) error {
	for _, tok := range statementBreakers {
		if strings.Contains(body, tok) {
			return errors.New("derived table contains " + strconv.Quote(tok))
		}
	}
	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return errors.New("derived table parentheses are unbalanced")
			}
		}
	}
	if depth != 0 {
		return errors.New("derived table parentheses are unbalanced")
	}
	return nil
}

// RefName, bir tablo referansının sorgu içinde anıldığı adı döndürür:
// alias varsa alias, yoksa tablo adının kendisi.
func RefName(table string) string {
	fields := strings.Fields(table)
	if len(fields) >= 2 {
		return fields[len(fields)-1]
	}
	return strings.TrimSpace(table)
}

// IdentifierError, tanımlayıcı doğrulama hatasını temsil eder.
type IdentifierError struct {
	Identifier string
	Reason     string
}

func (e *IdentifierError) Error() string {
	if e.Identifier == "" {
		return "novasql: invalid identifier: " + e.Reason
	}
	return "novasql: invalid identifier '" + e.Identifier + "': " + e.Reason
}
