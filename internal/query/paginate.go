package query

// PageSize is the number of items shown per page.
const PageSize = 9

// TotalPages returns ceil(n/size).
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the items of the given 1-based page. Out of range pages
// are clamped.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return []T{}
	}
	page = clamp(page, 1, max(TotalPages(len(items), size), 1))

	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Pager tracks the current page over a collection of known length.
type Pager struct {
	size  int
	total int
	page  int
}

func NewPager(size int) *Pager {
	if size <= 0 {
		size = PageSize
	}
	return &Pager{size: size, page: 1}
}

// Reset records a new collection length and returns to the first page.
func (p *Pager) Reset(total int) {
	p.total = total
	p.page = 1
}

func (p *Pager) Page() int { return p.page }

func (p *Pager) Size() int { return p.size }

func (p *Pager) TotalPages() int {
	return TotalPages(p.total, p.size)
}

func (p *Pager) Next() int {
	return p.Goto(p.page + 1)
}

func (p *Pager) Prev() int {
	return p.Goto(p.page - 1)
}

// Goto moves to page n, clamped to [1, TotalPages].
func (p *Pager) Goto(n int) int {
	p.page = clamp(n, 1, max(p.TotalPages(), 1))
	return p.page
}
