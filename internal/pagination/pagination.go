// Package pagination provides fixed-size page math for chat list views.
package pagination

const (
	// DefaultPerPage is the standard page size for product and sale lists.
	DefaultPerPage = 20
	// MaxPerPage caps the page size; Telegram keyboards degrade past this.
	MaxPerPage = 50
)

// Page describes one window over a list of Total items.
type Page struct {
	Index      int // 1-based, already clamped
	TotalPages int
	Offset     int
	Limit      int
}

// NormalizePerPage enforces the default and maximum page sizes.
func NormalizePerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// Paginate clamps page into [1, totalPages] and returns the window.
// An empty list yields a single empty page.
func Paginate(total, page, perPage int) Page {
	perPage = NormalizePerPage(perPage)

	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * perPage
	limit := perPage
	if offset+limit > total {
		limit = total - offset
		if limit < 0 {
			limit = 0
		}
	}
	return Page{Index: page, TotalPages: totalPages, Offset: offset, Limit: limit}
}
