package dashboard

import (
	"energy_dashboard/internal/chart"
	"energy_dashboard/internal/model"
	"energy_dashboard/internal/stats"
)

const defaultUserName = "User"

// Snapshot is the render-ready view of the dashboard.
type Snapshot struct {
	Loading      bool `json:"loading"`       // profile lookup still pending
	NoUserData   bool `json:"no_user_data"`  // lookup finished without a profile
	ChartLoading bool `json:"chart_loading"` // energy collection is empty

	UserName     string              `json:"user_name"`
	User         *model.UserProfile  `json:"user,omitempty"`
	FileName     string              `json:"file_name,omitempty"`
	LocationName string              `json:"location_name,omitempty"`
	Weather      *model.Weather      `json:"weather,omitempty"`
	Discom       *model.Discom       `json:"discom,omitempty"`
	LatestRate   *model.TOURate      `json:"latest_rate,omitempty"`
	Stats        stats.Summary       `json:"stats"`
	Chart        *chart.LineChart    `json:"chart,omitempty"`
	Table        []chart.Row         `json:"table"`
	Notification *model.Notification `json:"notification,omitempty"`
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{
		Loading:      s.loading,
		NoUserData:   !s.loading && s.user == nil,
		ChartLoading: len(s.records) == 0,
		UserName:     defaultUserName,
		User:         s.user,
		FileName:     s.fileName,
		Weather:      s.weather,
		Discom:       s.discom,
		Stats:        s.summary,
		Chart:        chart.BuildLineChart(s.points),
		Table:        chart.Table(s.points),
		Notification: s.notice,
	}
	if s.user != nil && s.user.Name != "" {
		snap.UserName = s.user.Name
	}
	if s.weather != nil {
		snap.LocationName = s.weather.Name
	}
	if len(s.touHistory) > 0 {
		latest := s.touHistory[0]
		snap.LatestRate = &latest
	}
	return snap
}
