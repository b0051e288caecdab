package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"regexp"
	"strings"
	"text/template"
	"time"
	"unicode"
)

// ErrInvalidName, iskele için verilen migration adının boş ya da geçersiz olduğunu belirtir.
var ErrInvalidName = errors.New("migrate: invalid migration name")

var (
	packageRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	wordRegex    = regexp.MustCompile(`[A-Za-z0-9]+`)
)

var stubTemplate = template.Must(template.New("migration").Parse(`package {{.Package}}

import (
	"context"

	"github.com/biyonik/novasql/migrate"
	"github.com/biyonik/novasql/schema"
)

// {{.Name}} returns the {{.Name}} migration.
func {{.Name}}() migrate.Migration {
	return migrate.Migration{
		Name: "{{.Name}}",
		Up: func(ctx context.Context, sc *schema.Schema) error {
			// Add migration logic here.
			return nil
		},
		// Down nil bırakılırsa migration geri alınamaz.
		Down: nil,
	}
}
`))

// NewName, serbest metinden zaman damgalı bir migration adı üretir:
// "create users table" -> "M261018093000CreateUsersTable".
func NewName(text string, now time.Time) (string, error) {
	words := wordRegex.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, text)
	}

	var b strings.Builder
	b.WriteString("M")
	b.WriteString(now.Format("060102150405"))
	for _, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String(), nil
}

// Scaffold, name için gofmt'li bir Go migration iskeleti üretir.
func Scaffold(pkg, name string) ([]byte, error) {
	if !packageRegex.MatchString(pkg) {
		return nil, fmt.Errorf("%w: package %q", ErrInvalidName, pkg)
	}
	if !strings.HasPrefix(name, "M") || len(wordRegex.FindString(name)) != len(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	var buf bytes.Buffer
	if err := stubTemplate.Execute(&buf, struct{ Package, Name string }{pkg, name}); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}
