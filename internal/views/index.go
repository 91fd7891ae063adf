package views

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

// GasometerIndex resolves gasometer ids to gasometers for labelling
// readings. It is reloaded wholesale from every gasometer fetch and never
// patched, so it is at most one fetch behind the server.
type GasometerIndex struct {
	cache *lru.Cache
}

// NewGasometerIndex bounds the index to size entries; the least recently
// used gasometers are evicted first.
func NewGasometerIndex(size int) (*GasometerIndex, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &GasometerIndex{cache: cache}, nil
}

// Load replaces the index contents.
func (i *GasometerIndex) Load(gasometers []models.Gasometer) {
	i.cache.Purge()
	for _, g := range gasometers {
		i.cache.Add(g.ID, g)
	}
}

func (i *GasometerIndex) Lookup(id int) (models.Gasometer, bool) {
	v, ok := i.cache.Get(id)
	if !ok {
		return models.Gasometer{}, false
	}
	return v.(models.Gasometer), true
}

// Label returns the gasometer code, or "#<id>" when it is unknown.
func (i *GasometerIndex) Label(id int) string {
	if i != nil {
		if g, ok := i.Lookup(id); ok {
			return g.Code
		}
	}
	return "#" + strconv.Itoa(id)
}

func (i *GasometerIndex) Len() int {
	return i.cache.Len()
}
