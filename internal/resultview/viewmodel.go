package resultview

import (
	"fmt"
	"slices"

	"github.com/scrapedash/scrapedash/internal/model"
)

const DefaultPageSize = 5

// PageSizes are the page sizes a user may pick.
var PageSizes = []int{5, 10, 25, 50}

// State is the user-controlled part of the view. It round-trips through JSON
// so a view can be restored or asserted on without rendering.
type State struct {
	Search   string        `json:"search"`
	Sort     *SortSpec     `json:"sort,omitempty"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Selected *model.Result `json:"selected,omitempty"`
}

// ViewModel holds a result set and the State applied to it. Every mutation
// keeps Page within [1, TotalPages] of the current filtered set.
type ViewModel struct {
	State
	records []model.Result
	rows    []model.Result
}

func New(records []model.Result) *ViewModel {
	vm := &ViewModel{State: State{Page: 1, PageSize: DefaultPageSize}}
	vm.SetRecords(records)
	return vm
}

// Restore rebuilds a view model from saved state. An invalid page size falls
// back to the default.
func Restore(records []model.Result, st State) *ViewModel {
	if !slices.Contains(PageSizes, st.PageSize) {
		st.PageSize = DefaultPageSize
	}
	vm := &ViewModel{State: st}
	vm.SetRecords(records)
	return vm
}

func (vm *ViewModel) Records() []model.Result {
	return vm.records
}

// SetRecords replaces the data set, keeping search, sort and page.
func (vm *ViewModel) SetRecords(records []model.Result) {
	vm.records = records
	vm.recompute()
}

// SetSearch changes the search term and returns to the first page.
func (vm *ViewModel) SetSearch(term string) {
	vm.Search = term
	vm.Page = 1
	vm.recompute()
}

// ToggleSort sorts by key ascending, or flips to descending when key is
// already sorted ascending. The current page is kept.
func (vm *ViewModel) ToggleSort(key model.Field) {
	dir := Asc
	if vm.Sort != nil && vm.Sort.Key == key && vm.Sort.Dir == Asc {
		dir = Desc
	}
	vm.Sort = &SortSpec{Key: key, Dir: dir}
	vm.recompute()
}

func (vm *ViewModel) ClearSort() {
	vm.Sort = nil
	vm.recompute()
}

func (vm *ViewModel) SetPage(page int) {
	vm.Page = clamp(page, 1, vm.TotalPages())
}

func (vm *ViewModel) NextPage() { vm.SetPage(vm.Page + 1) }
func (vm *ViewModel) PrevPage() { vm.SetPage(vm.Page - 1) }

// SetPageSize switches to one of PageSizes and returns to the first page.
func (vm *ViewModel) SetPageSize(size int) error {
	if !slices.Contains(PageSizes, size) {
		return fmt.Errorf("page size %d not one of %v", size, PageSizes)
	}
	vm.PageSize = size
	vm.Page = 1
	return nil
}

// CyclePageSize moves to the next allowed page size, wrapping around.
func (vm *ViewModel) CyclePageSize() {
	i := slices.Index(PageSizes, vm.PageSize)
	_ = vm.SetPageSize(PageSizes[(i+1)%len(PageSizes)])
}

func (vm *ViewModel) Select(r model.Result) {
	vm.Selected = &r
}

// SelectIndex selects the i-th item of the current page.
func (vm *ViewModel) SelectIndex(i int) bool {
	items := vm.Projection().Items
	if i < 0 || i >= len(items) {
		return false
	}
	vm.Select(items[i])
	return true
}

func (vm *ViewModel) ClearSelection() {
	vm.Selected = nil
}

func (vm *ViewModel) SelectedRecord() (model.Result, bool) {
	if vm.Selected == nil {
		return model.Result{}, false
	}
	return *vm.Selected, true
}

// Filtered returns every record that passes the search, in sorted order.
func (vm *ViewModel) Filtered() []model.Result {
	return vm.rows
}

func (vm *ViewModel) TotalPages() int {
	return PageCount(len(vm.rows), vm.PageSize)
}

func (vm *ViewModel) Projection() Projection {
	return Paginate(vm.rows, vm.Page, vm.PageSize)
}

func (vm *ViewModel) recompute() {
	vm.rows = Apply(vm.records, vm.Search, vm.Sort)
	vm.Page = clamp(vm.Page, 1, vm.TotalPages())
}
