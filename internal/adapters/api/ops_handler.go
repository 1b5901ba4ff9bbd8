package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"weatherbot.app/internal/adapters/infrastructure"
	"weatherbot.app/internal/ports"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string                        `json:"status"`
	Components map[string]ports.HealthStatus `json:"components"`
}

// CacheStatsResponse reports weather cache efficiency
type CacheStatsResponse struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	TotalOps int64   `json:"total_ops"`
	HitRatio float64 `json:"hit_ratio"`
}

// StatsResponse is the body of GET /api/stats
type StatsResponse struct {
	Users         int64               `json:"users"`
	Subscriptions int64               `json:"subscriptions"`
	Cache         *CacheStatsResponse `json:"cache,omitempty"`
}

// getHealth handles GET /health; degraded components still answer 200
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	components := s.health.CheckAll(c.Request.Context())
	status := infrastructure.OverallStatus(components)

	code := http.StatusOK
	if status == infrastructure.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{Status: status, Components: components})
}

// getStats handles GET /api/stats
func (s *HTTPServerAdapter) getStats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := s.users.Count(ctx)
	if err != nil {
		s.handleError(c, err)
		return
	}

	subscriptions, err := s.subscriptions.Count(ctx)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response := StatsResponse{Users: users, Subscriptions: subscriptions}
	if s.cache != nil {
		stats := s.cache.GetStats()
		response.Cache = &CacheStatsResponse{
			Hits:     stats.Hits,
			Misses:   stats.Misses,
			TotalOps: stats.TotalOps,
			HitRatio: stats.HitRatio,
		}
	}

	c.JSON(http.StatusOK, response)
}
