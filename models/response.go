package models

// WeatherResponse is the response for POST /api/v1/weather.
type WeatherResponse struct {
	// Success indicates whether the scrape produced a record.
	Success bool `json:"success"`

	// Data is the scraped record. Fields that were not found are null.
	Data *WeatherRecord `json:"data,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	ActiveScrapes int    `json:"active_scrapes"`
	Engine        string `json:"engine"`
	Version       string `json:"version"`
}
