package models

// WeatherRequest is the payload for POST /api/v1/weather.
type WeatherRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// Headless controls whether the browser surfaces a UI.
	// Default: true.
	Headless *bool `json:"headless,omitempty"`

	// Timeout is the per-field wait bound in seconds, applied to every
	// lookup. Default: the server's configured timeout. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
}

// Defaults applies default values to unset fields.
func (r *WeatherRequest) Defaults(defaultTimeout int) {
	if r.Headless == nil {
		t := true
		r.Headless = &t
	}
	if r.Timeout == 0 {
		r.Timeout = defaultTimeout
	}
}
