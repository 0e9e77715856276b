package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize applies when page_size is absent or invalid.
	DefaultPageSize = 20
	// MaxPageSize caps page_size.
	MaxPageSize = 100
	// MaxPage caps page so the row offset stays far from overflow.
	MaxPage = 1_000_000
)

// ListQuery carries the paging, ordering and search parameters shared by all
// list endpoints.
type ListQuery struct {
	Page     int
	PageSize int
	// Ordering is a comma-separated list of fields, "-" prefix for descending.
	Ordering string
	Search   string
}

// Normalize clamps paging into range.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset returns the row offset of the requested page.
func (q ListQuery) Offset() int {
	q = q.Normalize()
	return (q.Page - 1) * q.PageSize
}

// orderSpec describes one entity's ordering whitelist.
type orderSpec struct {
	table   string
	allowed map[string]string // query field -> column
	def     string            // default ordering when none of the requested fields is allowed
}

// paginate applies LIMIT/OFFSET for q.
func paginate(q ListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		n := q.Normalize()
		return db.Limit(n.PageSize).Offset(n.Offset())
	}
}

// order applies the whitelisted ordering from raw, falling back to the
// default, and always appends an id DESC tiebreak.
func order(spec orderSpec, raw string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		clauses := orderClauses(spec, raw)
		if len(clauses) == 0 {
			clauses = orderClauses(spec, spec.def)
		}
		for _, c := range clauses {
			db = db.Order(c)
		}
		return db.Order(spec.table + ".id DESC")
	}
}

func orderClauses(spec orderSpec, raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		col, ok := spec.allowed[field]
		if !ok || seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, col+" "+dir)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a lower-cased LIKE pattern matching term anywhere.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// search ORs a case-insensitive contains match of term over exprs. Each expr
// is a SQL fragment with exactly one placeholder, e.g.
// "LOWER(users.username) LIKE ? ESCAPE '\'".
func search(term string, exprs ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(exprs) == 0 {
			return db
		}
		pattern := containsPattern(term)
		args := make([]interface{}, len(exprs))
		for i := range exprs {
			args[i] = pattern
		}
		return db.Where("("+strings.Join(exprs, " OR ")+")", args...)
	}
}

// likeExpr is a case-insensitive LIKE over column.
func likeExpr(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}
