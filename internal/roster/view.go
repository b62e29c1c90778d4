// Package roster implements the employee list/search/paginate cycle.
package roster

import (
	"context"
	"errors"
	"sync"

	"github.com/alecgard/roster/internal/api"
	"github.com/alecgard/roster/internal/httpx"
)

// ListAPI is the slice of the gateway the list view needs.
type ListAPI interface {
	ListEmployees(ctx context.Context, page, pageSize int, search string) (*httpx.Result[api.PagedEmployees], error)
	DeleteEmployee(ctx context.Context, id string) (*httpx.Result[struct{}], error)
}

// View holds the list page state: committed search text, current page,
// fixed page size, the loaded items and page metadata. Every outbound list
// request carries a generation number; a response whose generation is no
// longer the latest issued is discarded, so an older in-flight request can
// never overwrite the result of a newer one.
type View struct {
	mu  sync.Mutex
	api ListAPI

	pageSize   int
	search     string
	page       int
	items      []api.Employee
	totalItems int
	totalPages int
	loading    bool
	errMsg     string

	gen uint64
}

// NewView creates a View starting at page 1 with an empty search.
func NewView(listAPI ListAPI, pageSize int) *View {
	return &View{api: listAPI, pageSize: pageSize, page: 1, totalPages: 1}
}

// Load fetches the current page with the committed search text. It replaces
// items and page metadata on success, records the server message on a
// business failure, and always clears the loading flag for the latest
// request. A non-nil error is a transport failure.
func (v *View) Load(ctx context.Context) error {
	return v.load(ctx, true)
}

func (v *View) load(ctx context.Context, allowClamp bool) error {
	v.mu.Lock()
	v.loading = true
	v.errMsg = ""
	v.gen++
	gen := v.gen
	page, size, search := v.page, v.pageSize, v.search
	v.mu.Unlock()

	res, err := v.api.ListEmployees(ctx, page, size, search)

	v.mu.Lock()
	if gen != v.gen {
		// Superseded by a newer request; that one owns the state now.
		v.mu.Unlock()
		return nil
	}
	v.loading = false
	if err != nil {
		v.mu.Unlock()
		return err
	}
	if !res.Success || res.Data == nil {
		v.errMsg = res.Message
		if v.errMsg == "" {
			v.errMsg = "failed to load employees"
		}
		v.items = nil
		v.mu.Unlock()
		return nil
	}

	v.items = res.Data.Items
	v.totalItems = res.Data.TotalItems
	v.totalPages = res.Data.TotalPages

	// A delete can leave the current page past the end; clamp to the last
	// page and reload once.
	clamp := allowClamp && res.Data.TotalPages >= 1 && page > res.Data.TotalPages
	if clamp {
		v.page = res.Data.TotalPages
	}
	v.mu.Unlock()

	if clamp {
		return v.load(ctx, false)
	}
	return nil
}

// Search commits new search text, resets to page 1 and reloads. Any prior
// page position is discarded.
func (v *View) Search(ctx context.Context, text string) error {
	v.mu.Lock()
	v.search = text
	v.page = 1
	v.mu.Unlock()
	return v.Load(ctx)
}

// CanPrev reports whether a previous page exists.
func (v *View) CanPrev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page > 1
}

// CanNext reports whether a next page exists.
func (v *View) CanNext() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page < v.totalPages
}

// Prev moves one page back and reloads with the last-committed search.
// At the first page it is a no-op.
func (v *View) Prev(ctx context.Context) error {
	v.mu.Lock()
	if v.page <= 1 {
		v.mu.Unlock()
		return nil
	}
	v.page--
	v.mu.Unlock()
	return v.Load(ctx)
}

// Next moves one page forward and reloads with the last-committed search.
// At the last page it is a no-op.
func (v *View) Next(ctx context.Context) error {
	v.mu.Lock()
	if v.page >= v.totalPages {
		v.mu.Unlock()
		return nil
	}
	v.page++
	v.mu.Unlock()
	return v.Load(ctx)
}

// Delete removes an employee after confirm approves it, then reloads the
// current page with the current search. It reports whether the deletion was
// performed; a declined confirmation returns false with no error. A
// server-side rejection is returned as an error carrying the server's
// message verbatim.
func (v *View) Delete(ctx context.Context, id string, confirm func(id string) bool) (bool, error) {
	if confirm != nil && !confirm(id) {
		return false, nil
	}
	res, err := v.api.DeleteEmployee(ctx, id)
	if err != nil {
		return false, err
	}
	if !res.Success {
		return false, errors.New(res.Message)
	}
	return true, v.Load(ctx)
}

// Items returns the employees on the current page.
func (v *View) Items() []api.Employee {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items
}

// Page returns the current page number.
func (v *View) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// TotalPages returns the server-reported page count.
func (v *View) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalPages
}

// TotalItems returns the server-reported item count.
func (v *View) TotalItems() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalItems
}

// SearchText returns the last-committed search text.
func (v *View) SearchText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

// Loading reports whether a list request is in flight.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Err returns the last server-reported load failure message, or "".
func (v *View) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}
