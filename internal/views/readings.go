package views

import (
	"sync"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
	"github.com/tejusbharadwaj/gascontrol/internal/query"
)

// ReadingsView lists readings with id/gasometer search and a periodicity
// toggle.
type ReadingsView struct {
	*PagedList[models.Reading, models.ReadingPayload]

	mu     sync.Mutex
	search string
	period query.PeriodicityToggle
}

func NewReadingsView(repo ReadingRepository, opts ...Option) *ReadingsView {
	o := buildOptions(opts)
	validator := NewPayloadValidator(o.now)

	list := newPagedList[models.Reading, models.ReadingPayload](
		repo,
		listLabels{
			singular: "Reading",
			plural:   "readings",
			fields:   []string{"gasometro", "data_leitura", "consumo_m3", "periodicidade", "non_field_errors", "detail"},
		},
		validator.ValidateReading,
		o,
	)

	return &ReadingsView{PagedList: list}
}

func (v *ReadingsView) Search(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = text
	v.applyLocked()
}

// TogglePeriodicity selects p, or clears the filter when p is already
// selected.
func (v *ReadingsView) TogglePeriodicity(p models.Periodicity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.period.Select(p)
	v.applyLocked()
}

func (v *ReadingsView) Periodicity() models.Periodicity {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.period.Active()
}

func (v *ReadingsView) SearchText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

func (v *ReadingsView) Get(id int) (models.Reading, bool) {
	return v.Find(func(r models.Reading) bool { return r.ID == id })
}

func (v *ReadingsView) applyLocked() {
	v.Apply(query.ReadingSearch(v.search), query.PeriodicityIs(v.period.Active()))
}
