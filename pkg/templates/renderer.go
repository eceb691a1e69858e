package templates

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/riskhub/notify/pkg/notification"
)

// Content is a rendered template.
type Content struct {
	Title     string
	Body      string
	Priority  notification.Priority
	Channel   notification.Channel
	ExpiresAt *time.Time
}

// Renderer fills templates from a context map. It holds no mutable state and
// is safe for concurrent use.
type Renderer struct {
	catalog    Catalog
	lang       language.Tag
	printer    *message.Printer
	location   *time.Location
	dateLayout string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c Catalog) Option {
	return func(r *Renderer) {
		if len(c) > 0 {
			r.catalog = c
		}
	}
}

// WithLanguage sets the language used for dates, numbers and booleans.
func WithLanguage(tag language.Tag) Option {
	return func(r *Renderer) {
		r.lang = tag
	}
}

// WithLocation sets the time zone dates are shown in.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.location = loc
		}
	}
}

// NewRenderer creates a Renderer. Defaults: built-in catalog, Spanish, UTC.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		catalog:  DefaultCatalog(),
		lang:     language.Spanish,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.printer = message.NewPrinter(r.lang)
	r.dateLayout = dateLayoutFor(r.lang)
	return r
}

// Catalog returns the catalog the renderer uses.
func (r *Renderer) Catalog() Catalog {
	return r.catalog
}

// Render fills the template of typ from data. The only error is
// ErrUnknownType: missing variables never fail rendering.
func (r *Renderer) Render(typ notification.Type, data map[string]any, createdAt time.Time) (Content, error) {
	tpl, err := r.catalog.Lookup(typ)
	if err != nil {
		return Content{}, err
	}

	return Content{
		Title:     r.Text(tpl.Title, data),
		Body:      r.Text(tpl.Body, data),
		Priority:  tpl.Priority,
		Channel:   tpl.Channel,
		ExpiresAt: Expiry(tpl, createdAt),
	}, nil
}

// Expiry returns createdAt plus the template's lifetime, or nil when the
// template does not expire.
func Expiry(tpl Template, createdAt time.Time) *time.Time {
	if tpl.ExpiryHours <= 0 {
		return nil
	}
	at := createdAt.Add(time.Duration(tpl.ExpiryHours) * time.Hour)
	return &at
}

var (
	placeholderRegex = regexp.MustCompile(`\{([^{}]+)\}`)
	identifierRegex  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Text substitutes placeholders in tmpl.
//
//   - {name} is replaced with the formatted value of data["name"]; when the
//     key is missing or nil the placeholder is kept as is.
//   - {name || "literal"} yields the value of name when it is set and not
//     empty, zero or false, and the literal otherwise. Anything other than a
//     single identifier on the left yields the literal.
func (r *Renderer) Text(tmpl string, data map[string]any) string {
	return placeholderRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		expr := match[1 : len(match)-1]

		if i := strings.LastIndex(expr, "||"); i >= 0 {
			literal, ok := unquote(strings.TrimSpace(expr[i+2:]))
			if !ok {
				return match
			}
			name := strings.TrimSpace(expr[:i])
			if !identifierRegex.MatchString(name) {
				return literal
			}
			if v, ok := data[name]; ok && truthy(v) {
				return r.format(v)
			}
			return literal
		}

		name := strings.TrimSpace(expr)
		if !identifierRegex.MatchString(name) {
			return match
		}
		v, ok := data[name]
		if !ok || v == nil {
			return match
		}
		return r.format(v)
	})
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1], true
	}
	return "", false
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case string:
		return val != ""
	case bool:
		return val
	case time.Time:
		return !val.IsZero()
	case *time.Time:
		return val != nil && !val.IsZero()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return !rv.IsZero()
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

// format renders v for humans in the renderer's language.
func (r *Renderer) format(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.In(r.location).Format(r.dateLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.In(r.location).Format(r.dateLayout)
	case bool:
		return r.formatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return r.printer.Sprint(number.Decimal(val, number.MaxFractionDigits(2)))
	case float64:
		return r.printer.Sprint(number.Decimal(val, number.MaxFractionDigits(2)))
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

func (r *Renderer) formatBool(v bool) string {
	base, _ := r.lang.Base()
	switch {
	case base.String() == "es" && v:
		return "Sí"
	case v:
		return "Yes"
	default:
		return "No"
	}
}

func dateLayoutFor(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		// Region is inferred for a bare "en", which yields US.
		if region, _ := tag.Region(); region.String() == "US" {
			return "01/02/2006"
		}
		return "02/01/2006"
	case "es", "pt", "fr", "it":
		return "02/01/2006"
	default:
		return "2006-01-02"
	}
}
