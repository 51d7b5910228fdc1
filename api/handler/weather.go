package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/weathercrawl/models"
)

// WeatherScraper is the part of scraper.Scraper the handlers use.
type WeatherScraper interface {
	Scrape(ctx context.Context, url string, headless bool, timeout time.Duration) (*models.WeatherRecord, error)
	Active() int
	Engine() string
}

// Weather returns a handler for POST /api/v1/weather.
//
// Each request launches its own session, so requests never share a page.
func Weather(sc WeatherScraper, defaultTimeout int) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.WeatherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.WeatherResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults(defaultTimeout)

		record, err := sc.Scrape(c.Request.Context(), req.URL, *req.Headless, time.Duration(req.Timeout)*time.Second)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			respondError(c, err, timing)
			return
		}

		c.JSON(http.StatusOK, models.WeatherResponse{
			Success: true,
			Data:    record,
			Timing:  timing,
		})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.WeatherResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
