package chart

import (
	"strconv"

	"energy_dashboard/internal/model"
)

const (
	AxisConsumption = "y"
	AxisCost        = "y1"

	LabelConsumption = "Consumption (kWh)"
	LabelCost        = "Cost (₹)"
	Title            = "Energy Consumption and Cost Analysis"
)

// Dataset is one plotted line.
type Dataset struct {
	Label           string          `json:"label"`
	Data            []model.Measure `json:"data"`
	BorderColor     string          `json:"borderColor"`
	BackgroundColor string          `json:"backgroundColor"`
	BorderWidth     int             `json:"borderWidth"`
	YAxisID         string          `json:"yAxisID"`
}

// Axis describes a y axis of the line chart.
type Axis struct {
	Title       string `json:"title"`
	Position    string `json:"position"`
	BeginAtZero bool   `json:"beginAtZero"`
	DrawGrid    bool   `json:"drawGrid"`
}

// LineChart is a dual-axis line chart keyed by time: consumption on the left
// axis, cost on the right.
type LineChart struct {
	Title    string          `json:"title"`
	Labels   []string        `json:"labels"`
	Datasets []Dataset       `json:"datasets"`
	Axes     map[string]Axis `json:"axes"`
}

// BuildLineChart returns nil for an empty series; the view shows its loading
// placeholder instead.
func BuildLineChart(points []model.ConsumptionPoint) *LineChart {
	if len(points) == 0 {
		return nil
	}

	labels := make([]string, len(points))
	consumption := make([]model.Measure, len(points))
	cost := make([]model.Measure, len(points))
	for i, p := range points {
		labels[i] = p.Time
		consumption[i] = p.Consumption
		cost[i] = p.Cost
	}

	return &LineChart{
		Title:  Title,
		Labels: labels,
		Datasets: []Dataset{
			{
				Label:           LabelConsumption,
				Data:            consumption,
				BorderColor:     "rgba(75, 192, 192, 1)",
				BackgroundColor: "rgba(75, 192, 192, 0.2)",
				BorderWidth:     1,
				YAxisID:         AxisConsumption,
			},
			{
				Label:           LabelCost,
				Data:            cost,
				BorderColor:     "rgba(255, 99, 132, 1)",
				BackgroundColor: "rgba(255, 99, 132, 0.2)",
				BorderWidth:     1,
				YAxisID:         AxisCost,
			},
		},
		Axes: map[string]Axis{
			AxisConsumption: {Title: LabelConsumption, Position: "left", BeginAtZero: true, DrawGrid: true},
			AxisCost:        {Title: LabelCost, Position: "right", BeginAtZero: true},
		},
	}
}

// Row is one line of the consumption table, formatted for display.
type Row struct {
	Time        string `json:"time"`
	Consumption string `json:"consumption"`
	Cost        string `json:"cost"`
}

// Table formats points as table rows. Non-finite values render as "NaN" so
// the gap stays visible.
func Table(points []model.ConsumptionPoint) []Row {
	rows := make([]Row, len(points))
	for i, p := range points {
		rows[i] = Row{
			Time:        p.Time,
			Consumption: formatMeasure(p.Consumption),
			Cost:        formatMeasure(p.Cost),
		}
	}
	return rows
}

func formatMeasure(m model.Measure) string {
	return strconv.FormatFloat(m.Float(), 'f', -1, 64)
}
