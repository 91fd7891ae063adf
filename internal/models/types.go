package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Periodicity is the declared recurrence interval of a reading.
type Periodicity string

const (
	Weekly     Periodicity = "SEMANAL"
	Monthly    Periodicity = "MENSAL"
	Bimonthly  Periodicity = "BIMESTRAL"
	Semiannual Periodicity = "SEMESTRAL"
)

// Periodicities lists the accepted values in display order.
var Periodicities = []Periodicity{Weekly, Monthly, Bimonthly, Semiannual}

var periodicityAliases = map[string]Periodicity{
	"SEMANAL":    Weekly,
	"WEEKLY":     Weekly,
	"MENSAL":     Monthly,
	"MONTHLY":    Monthly,
	"BIMESTRAL":  Bimonthly,
	"BIMONTHLY":  Bimonthly,
	"SEMESTRAL":  Semiannual,
	"SEMIANNUAL": Semiannual,
}

// ParsePeriodicity accepts the wire value or its English name, in any case.
func ParsePeriodicity(s string) (Periodicity, error) {
	if p, ok := periodicityAliases[strings.ToUpper(s)]; ok {
		return p, nil
	}
	return "", fmt.Errorf("invalid periodicity: %s", s)
}

// Valid reports whether p is one of the wire values.
func (p Periodicity) Valid() bool {
	for _, v := range Periodicities {
		if p == v {
			return true
		}
	}
	return false
}

// Consumption holds the consumo_m3 field as received. The API may send it
// as a JSON number or as a numeric string.
type Consumption string

func (c *Consumption) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Consumption(s)
	default:
		*c = Consumption(data)
	}
	return nil
}

// Float64 parses the value. Malformed or empty text yields NaN.
func (c Consumption) Float64() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(c)), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ApartmentRef is the apartamento field, which the API returns either as a
// numeric id or as a descriptive string.
type ApartmentRef struct {
	ID    int
	Label string
}

func (a *ApartmentRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ApartmentRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = ApartmentRef{Label: s}
		if id, err := strconv.Atoi(s); err == nil {
			a.ID = id
		}
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("apartamento: %w", err)
	}
	*a = ApartmentRef{ID: id}
	return nil
}

func (a ApartmentRef) MarshalJSON() ([]byte, error) {
	if a.Label != "" && strconv.Itoa(a.ID) != a.Label {
		return json.Marshal(a.Label)
	}
	return json.Marshal(a.ID)
}

func (a ApartmentRef) String() string {
	if a.Label != "" {
		return a.Label
	}
	return strconv.Itoa(a.ID)
}

// Gasometer is a gas meter tied to an apartment.
type Gasometer struct {
	ID            int          `json:"id"`
	Code          string       `json:"codigo"`
	Apartment     ApartmentRef `json:"apartamento"`
	ApartmentInfo string       `json:"apartamento_info,omitempty"`
}

// ApartmentLabel prefers the server-rendered apartamento_info.
func (g Gasometer) ApartmentLabel() string {
	if g.ApartmentInfo != "" {
		return g.ApartmentInfo
	}
	return g.Apartment.String()
}

// Reading is a dated consumption measurement of one gasometer.
type Reading struct {
	ID          int         `json:"id"`
	Gasometer   int         `json:"gasometro"`
	Date        string      `json:"data_leitura"`
	Consumption Consumption `json:"consumo_m3"`
	Periodicity Periodicity `json:"periodicidade"`
}

// GasometerPayload is the body of gasometer create and update requests.
type GasometerPayload struct {
	Code      string `json:"codigo"`
	Apartment int    `json:"apartamento"`
}

// ReadingPayload is the body of reading create and update requests.
type ReadingPayload struct {
	Gasometer   int         `json:"gasometro"`
	Date        string      `json:"data_leitura"`
	Consumption float64     `json:"consumo_m3"`
	Periodicity Periodicity `json:"periodicidade"`
}

// ChartPoint is one entry of the consumption time series.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}
