package model

import (
	"bytes"
	"encoding/json"
	"math"
)

// CSV column headers expected in an energy export. The double space in
// ColumnSolarEnergy is part of the header as the meter portal writes it.
const (
	ColumnSendDate    = "SendDate"
	ColumnSolarPower  = "Solar Power (kW)"
	ColumnSolarEnergy = "Solar energy Generation  (kWh)"
	ColumnConsumption = "consumptionValue (kW)"
)

// RawRow is one CSV line keyed by header name. Columns missing from a short
// line are absent from the map.
type RawRow map[string]string

// Measure is a numeric field that may hold NaN when the source value could
// not be parsed. NaN encodes to JSON null and null decodes to NaN. Infinities
// encode as the strings "Infinity" and "-Infinity".
type Measure float64

// NaN returns the unparseable sentinel.
func NaN() Measure { return Measure(math.NaN()) }

func (m Measure) Float() float64 { return float64(m) }

// Valid reports whether the measure holds a finite number.
func (m Measure) Valid() bool {
	f := float64(m)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (m Measure) MarshalJSON() ([]byte, error) {
	f := float64(m)
	switch {
	case math.IsNaN(f):
		return []byte("null"), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(f)
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null":
		*m = NaN()
		return nil
	case `"Infinity"`:
		*m = Measure(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*m = Measure(math.Inf(-1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Measure(f)
	return nil
}

// EnergyRecord is one normalized CSV row.
type EnergyRecord struct {
	SendDate    string  `json:"SendDate"`
	SolarPower  Measure `json:"SolarPower"`  // kW
	SolarEnergy Measure `json:"SolarEnergy"` // kWh
	Consumption Measure `json:"Consumption"` // kW
}

// ConsumptionPoint is the chart-ready projection of an EnergyRecord.
type ConsumptionPoint struct {
	Time        string  `json:"time"`
	Consumption Measure `json:"consumption"`
	Cost        Measure `json:"cost"`
}
