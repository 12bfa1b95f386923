// Package resultview derives what the results table shows from a job's raw
// result set: a filtered, sorted and paginated projection plus CSV export.
// Nothing here renders; the TUI reads a Projection and draws it.
package resultview

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/scrapedash/scrapedash/internal/model"
)

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

type SortSpec struct {
	Key model.Field `json:"key"`
	Dir SortDir     `json:"dir"`
}

// Projection is one page of the filtered and sorted records.
type Projection struct {
	Items      []model.Result
	Total      int // records after filtering
	TotalPages int // at least 1
	Page       int // 1-based, within [1, TotalPages]
	First      int // 1-based index of Items[0], 0 when empty
	Last       int
}

// Project filters, sorts and paginates records in one step.
func Project(records []model.Result, search string, sort *SortSpec, page, pageSize int) Projection {
	return Paginate(Apply(records, search, sort), page, pageSize)
}

// Apply returns the filtered and sorted records without paginating. The
// input slice is never reordered.
func Apply(records []model.Result, search string, sort *SortSpec) []model.Result {
	out := Filter(records, search)
	if sort != nil {
		out = slices.Clone(out)
		Sort(out, *sort)
	}
	return out
}

// Filter keeps records where any field contains term, case-insensitively.
// An empty term keeps everything in input order.
func Filter(records []model.Result, term string) []model.Result {
	if term == "" {
		return records
	}
	needle := strings.ToLower(term)
	out := make([]model.Result, 0, len(records))
	for _, r := range records {
		if matches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r model.Result, needle string) bool {
	for _, f := range model.Fields {
		if v := r.Get(f); v != "" && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Sort orders records in place. Equal records keep their relative order.
func Sort(records []model.Result, spec SortSpec) {
	compare := comparator(spec.Key)
	slices.SortStableFunc(records, func(a, b model.Result) int {
		c := compare(a, b)
		if spec.Dir == Desc {
			return -c
		}
		return c
	})
}

func comparator(key model.Field) func(a, b model.Result) int {
	if key.Numeric() {
		return func(a, b model.Result) int {
			return cmp.Compare(ParseNumber(a.Get(key)), ParseNumber(b.Get(key)))
		}
	}
	return func(a, b model.Result) int {
		return strings.Compare(a.Get(key), b.Get(key))
	}
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the leading number of a display string, accepting a
// comma as the decimal separator ("4,5" is 4.5). Text with no leading number
// yields -Inf so it sorts below every real value.
func ParseNumber(s string) float64 {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	m := leadingFloat.FindString(s)
	if m == "" {
		return math.Inf(-1)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}

// Paginate slices rows into page of size pageSize, clamping page into range.
func Paginate(rows []model.Result, page, pageSize int) Projection {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := Projection{Total: len(rows), TotalPages: PageCount(len(rows), pageSize)}
	p.Page = clamp(page, 1, p.TotalPages)
	if p.Total == 0 {
		return p
	}
	start := (p.Page - 1) * pageSize
	end := min(start+pageSize, p.Total)
	p.Items = rows[start:end]
	p.First = start + 1
	p.Last = end
	return p
}

// PageCount is ceil(n/size), never less than 1.
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// PageWindow returns up to five page numbers to offer around current.
func PageWindow(current, total int) []int {
	if total < 1 {
		total = 1
	}
	current = clamp(current, 1, total)
	n := min(5, total)
	pages := make([]int, n)
	for i := range pages {
		switch {
		case total <= 5, current <= 3:
			pages[i] = i + 1
		case current >= total-2:
			pages[i] = total - 4 + i
		default:
			pages[i] = current - 2 + i
		}
	}
	return pages
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

// ParseSort reads a "field" or "field:dir" flag value. An empty string means
// no sort.
func ParseSort(s string) (*SortSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	name, dir, _ := strings.Cut(s, ":")
	spec := &SortSpec{Key: model.Field(strings.ToLower(name)), Dir: Asc}
	if !slices.Contains(model.Fields, spec.Key) {
		return nil, fmt.Errorf("unknown sort field %q", name)
	}
	switch SortDir(strings.ToLower(dir)) {
	case "", Asc:
	case Desc:
		spec.Dir = Desc
	default:
		return nil, fmt.Errorf("unknown sort direction %q", dir)
	}
	return spec, nil
}
