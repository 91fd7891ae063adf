package views

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
)

const isoDate = "2006-01-02"

// PayloadValidator checks payloads before they are sent.
type PayloadValidator struct {
	validPeriodicities map[models.Periodicity]bool
	now                func() time.Time
}

func NewPayloadValidator(now func() time.Time) *PayloadValidator {
	if now == nil {
		now = time.Now
	}
	valid := make(map[models.Periodicity]bool, len(models.Periodicities))
	for _, p := range models.Periodicities {
		valid[p] = true
	}
	return &PayloadValidator{validPeriodicities: valid, now: now}
}

func (v *PayloadValidator) ValidateGasometer(p models.GasometerPayload) error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("code is required")
	}
	if p.Apartment <= 0 {
		return errors.New("apartment is required")
	}
	return nil
}

func (v *PayloadValidator) ValidateReading(p models.ReadingPayload) error {
	if p.Gasometer <= 0 {
		return errors.New("gasometer id is required")
	}

	if p.Date == "" {
		return errors.New("reading date cannot be blank")
	}
	if _, err := time.Parse(isoDate, p.Date); err != nil {
		return fmt.Errorf("invalid reading date: %s", p.Date)
	}
	if p.Date > v.now().Format(isoDate) {
		return errors.New("reading date cannot be in the future")
	}

	if math.IsNaN(p.Consumption) || math.IsInf(p.Consumption, 0) {
		return errors.New("consumption must be a number")
	}
	if p.Consumption < 0 {
		return errors.New("consumption cannot be negative")
	}

	if !v.validPeriodicities[p.Periodicity] {
		return fmt.Errorf("invalid periodicity: %s", p.Periodicity)
	}

	return nil
}
