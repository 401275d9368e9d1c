// internal/search/query/compiler.go
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"property-search/internal/common/config"
	"property-search/internal/models"
	"property-search/internal/search/filters"
)

// Dialect selects placeholder and case-insensitive match syntax.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectFor maps a configured database driver to its dialect.
func DialectFor(driver string) Dialect {
	if driver == config.DriverPostgres {
		return DialectPostgres
	}
	return DialectSQLite
}

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// numeric wraps a placeholder so postgres compares it as numeric instead of
// inferring the column type, which rejects 2.5 against an integer column.
func (d Dialect) numeric(placeholder string) string {
	if d == DialectPostgres {
		return placeholder + "::numeric"
	}
	return placeholder
}

// sqlite LIKE is already case-insensitive for ASCII.
func (d Dialect) like() string {
	if d == DialectPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

// Bounds holds the optional numeric bounds of one filter. Selection filters
// keep their threshold in Min.
type Bounds struct {
	Min *float64
	Max *float64
}

// Request is a search request validated once at the HTTP boundary.
type Request struct {
	Target  string
	Filters map[string]Bounds
	Limit   int
	Params  url.Values
}

const (
	ModeTarget  = "target"
	ModeFilters = "filters"
)

// Mode reports which of the two mutually exclusive search modes applies.
func (r Request) Mode() string {
	if r.Target != "" {
		return ModeTarget
	}
	return ModeFilters
}

// ParseRequest reads the catalog's parameters out of values. Unparseable
// numbers and unknown parameters are dropped without error.
func ParseRequest(values url.Values, catalog filters.Catalog) Request {
	req := Request{
		Target:  strings.TrimSpace(values.Get("target")),
		Filters: make(map[string]Bounds),
		Params:  values,
	}

	for _, d := range catalog {
		var b Bounds
		if d.IsBounded() {
			b.Min = parseNumber(values.Get(d.MinParam()))
			b.Max = parseNumber(values.Get(d.MaxParam()))
		} else {
			b.Min = parseNumber(values.Get(d.Key))
		}
		if b.Min != nil || b.Max != nil {
			req.Filters[d.Key] = b
		}
	}

	if n, err := strconv.Atoi(strings.TrimSpace(values.Get("limit"))); err == nil && n > 0 {
		req.Limit = n
	}

	return req
}

func parseNumber(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Options tune compilation.
type Options struct {
	Ceiling    int
	OwnerMatch bool
}

// DefaultCeiling bounds the result size when nothing else is configured.
const DefaultCeiling = 100

// Statement is a compiled, fully parameterised query.
type Statement struct {
	SQL   string
	Args  []interface{}
	Limit int
}

type builder struct {
	dialect Dialect
	conds   []string
	args    []interface{}
}

// bind records a value and returns its placeholder.
func (b *builder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

// bindNumber binds a filter bound for comparison against a numeric column.
func (b *builder) bindNumber(v float64) string {
	return b.dialect.numeric(b.bind(v))
}

func (b *builder) where(cond string) {
	b.conds = append(b.conds, cond)
}

type ruleFunc func(b *builder, d filters.Descriptor, bounds Bounds)

var rules = map[filters.Kind]ruleFunc{
	filters.KindRange:     rangeRule,
	filters.KindSlider:    rangeRule,
	filters.KindSelection: thresholdRule,
}

func rangeRule(b *builder, d filters.Descriptor, bounds Bounds) {
	if bounds.Min != nil {
		b.where(d.Key + " >= " + b.bindNumber(*bounds.Min))
	}
	if bounds.Max != nil {
		b.where(d.Key + " <= " + b.bindNumber(*bounds.Max))
	}
}

// thresholdRule treats a selection as "at least N"; 0 means any.
func thresholdRule(b *builder, d filters.Descriptor, bounds Bounds) {
	if bounds.Min != nil && *bounds.Min > 0 {
		b.where(d.Key + " >= " + b.bindNumber(*bounds.Min))
	}
}

func (b *builder) targetRule(target string, ownerMatch bool) {
	like := b.dialect.like()
	pattern := "%" + target + "%"

	alts := []string{
		"address " + like + " " + b.bind(pattern),
		"parcel_id " + like + " " + b.bind(pattern),
	}

	if ownerMatch {
		words := strings.Fields(target)
		owner := make([]string, 0, len(words))
		for _, w := range words {
			owner = append(owner, "owner_name "+like+" "+b.bind("%"+w+"%"))
		}
		alts = append(alts, "("+strings.Join(owner, " AND ")+")")
	}

	b.where("(" + strings.Join(alts, " OR ") + ")")
}

// Compile turns a request into a statement over the property table. Column
// names come only from the catalog; every request value is bound.
func Compile(catalog filters.Catalog, req Request, dialect Dialect, opts Options) Statement {
	b := &builder{dialect: dialect}
	b.where("address IS NOT NULL")

	if req.Target != "" {
		b.targetRule(req.Target, opts.OwnerMatch)
	} else {
		for _, d := range catalog {
			bounds, ok := req.Filters[d.Key]
			if !ok {
				continue
			}
			if rule, ok := rules[d.Kind]; ok {
				rule(b, d, bounds)
			}
		}
	}

	ceiling := opts.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	limit := ceiling
	if req.Limit > 0 && req.Limit <= ceiling {
		limit = req.Limit
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(models.PropertyColumns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(models.PropertyTable)
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(b.conds, " AND "))
	sb.WriteString(" LIMIT ")
	sb.WriteString(strconv.Itoa(limit))

	return Statement{SQL: sb.String(), Args: b.args, Limit: limit}
}
