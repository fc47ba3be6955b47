package pagination

// Page describes one page of an offset-paginated result set.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// New builds a Page for the given 1-based page number, limit and total
// match count. Pages is ceil(total/limit).
func New(page, limit, total int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Clamp normalizes caller-supplied page and limit values: page floors at 1,
// limit falls back to def and caps at MaxLimit.
func Clamp(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset returns the row offset for a 1-based page.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
