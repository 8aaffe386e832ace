package ingest

import (
	"io"

	"energy_dashboard/internal/model"
)

// Normalize maps each raw row to one EnergyRecord, in order. Unparseable or
// missing numeric cells become NaN; no row is dropped.
func Normalize(rows []model.RawRow) []model.EnergyRecord {
	records := make([]model.EnergyRecord, len(rows))
	for i, row := range rows {
		records[i] = model.EnergyRecord{
			SendDate:    row[model.ColumnSendDate],
			SolarPower:  measure(row, model.ColumnSolarPower),
			SolarEnergy: measure(row, model.ColumnSolarEnergy),
			Consumption: measure(row, model.ColumnConsumption),
		}
	}
	return records
}

func measure(row model.RawRow, col string) model.Measure {
	v, ok := row[col]
	if !ok {
		return model.NaN()
	}
	return model.Measure(ParseFloat(v))
}

// InvalidFields counts numeric cells that did not normalize to a finite number.
func InvalidFields(records []model.EnergyRecord) int {
	n := 0
	for _, r := range records {
		for _, m := range []model.Measure{r.SolarPower, r.SolarEnergy, r.Consumption} {
			if !m.Valid() {
				n++
			}
		}
	}
	return n
}

// Load parses r with p and normalizes the result.
func Load(p Parser, r io.Reader) ([]model.EnergyRecord, error) {
	rows, err := p.Parse(r)
	if err != nil {
		return nil, err
	}
	return Normalize(rows), nil
}
