package models

type Overview struct {
	TotalPostsScanned  int `json:"total_posts_scanned"`
	SuspiciousContent  int `json:"suspicious_content"`
	HighRiskAlerts     int `json:"high_risk_alerts"`
	FakeHotelsDetected int `json:"fake_hotels_detected"`
}

type StatsData struct {
	Overview *Overview `json:"overview"`
}

// StatsResponse is the envelope of GET /dashboard/stats.
type StatsResponse struct {
	Status  string     `json:"status"`
	Data    *StatsData `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

type CategorySlice struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color" yaml:"color"`
}
