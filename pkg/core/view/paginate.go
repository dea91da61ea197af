package view

// Page is one window of a filtered list
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Total      int
}

// Paginate slices items into fixed-size pages. The page number is clamped into range,
// and an empty list still has one (empty) page.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = 1
	}
	totalPages := (len(items) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     page,
		TotalPages: totalPages,
		Total:      len(items),
	}
}
