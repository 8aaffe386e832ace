package ingest

import (
	"io"

	"energy_dashboard/internal/model"
)

// Parser reads tabular energy data from a source and returns raw rows keyed by
// header name.
type Parser interface {
	Parse(r io.Reader) ([]model.RawRow, error)
}
