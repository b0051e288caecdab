package validation

import "strings"

// OperatorClass, bir operatörün hangi render kuralına tabi olduğunu belirtir.
type OperatorClass int

const (
	ClassUnknown OperatorClass = iota
	ClassComparison
	ClassMembership
	ClassPattern
	ClassNullTest
)

// allowedOperators, koşul ağaçlarında kullanılabilecek operatörlerin beyaz listesidir.
var allowedOperators = map[string]OperatorClass{
	"=":  ClassComparison,
	"!=": ClassComparison,
	"<>": ClassComparison,
	"<":  ClassComparison,
	">":  ClassComparison,
	"<=": ClassComparison,
	">=": ClassComparison,

	"IN":     ClassMembership,
	"NOT IN": ClassMembership,

	"LIKE":     ClassPattern,
	"NOT LIKE": ClassPattern,

	"IS NULL":     ClassNullTest,
	"IS NOT NULL": ClassNullTest,
}

// NormalizeOperator, operatörü büyük harfe çevirip fazla boşlukları temizler
// ve beyaz listede değilse hata döner.
func NormalizeOperator(op string) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(op), " "))
	if _, ok := allowedOperators[normalized]; !ok {
		return "", &OperatorError{Operator: op, Reason: "operator not in allowed list"}
	}
	return normalized, nil
}

// Classify, normalize edilmiş operatörün sınıfını döndürür.
func Classify(op string) OperatorClass {
	normalized, err := NormalizeOperator(op)
	if err != nil {
		return ClassUnknown
	}
	return allowedOperators[normalized]
}

// OperatorError, operatör doğrulama hatasını temsil eder.
type OperatorError struct {
	Operator string
	Reason   string
}

func (e *OperatorError) Error() string {
	return "novasql: invalid operator '" + e.Operator + "': " + e.Reason
}

// referentialActions, yabancı anahtar ON DELETE / ON UPDATE eylemleri için beyaz listedir.
var referentialActions = map[string]bool{
	"RESTRICT":    true,
	"CASCADE":     true,
	"NO ACTION":   true,
	"SET DEFAULT": true,
	"SET NULL":    true,
}

// ReferentialAction, eylemi normalize eder. Liste dışı bir değer için ok=false döner.
func ReferentialAction(action string) (normalized string, ok bool) {
	normalized = strings.ToUpper(strings.Join(strings.Fields(action), " "))
	return normalized, referentialActions[normalized]
}
