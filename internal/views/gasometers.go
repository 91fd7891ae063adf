package views

import (
	"sync"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
	"github.com/tejusbharadwaj/gascontrol/internal/query"
)

// GasometersView lists gasometers with code/id search.
type GasometersView struct {
	*PagedList[models.Gasometer, models.GasometerPayload]

	mu     sync.Mutex
	search string
}

func NewGasometersView(repo GasometerRepository, opts ...Option) *GasometersView {
	o := buildOptions(opts)
	validator := NewPayloadValidator(o.now)

	list := newPagedList[models.Gasometer, models.GasometerPayload](
		repo,
		listLabels{
			singular: "Gasometer",
			plural:   "gasometers",
			fields:   []string{"apartamento", "codigo", "non_field_errors", "detail"},
		},
		validator.ValidateGasometer,
		o,
	)
	if o.index != nil {
		list.onLoad = o.index.Load
	}

	return &GasometersView{PagedList: list}
}

// Search filters by code, case-insensitively, or by exact id.
func (v *GasometersView) Search(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = text
	v.Apply(query.GasometerSearch(text))
}

func (v *GasometersView) SearchText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

func (v *GasometersView) Get(id int) (models.Gasometer, bool) {
	return v.Find(func(g models.Gasometer) bool { return g.ID == id })
}
