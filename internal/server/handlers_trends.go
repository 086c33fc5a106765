package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sentiwatch/watchdog/internal/domain"
	apperrors "github.com/sentiwatch/watchdog/internal/errors"
)

var trendWindows = map[string]time.Duration{
	"1h":  time.Hour,
	"6h":  6 * time.Hour,
	"24h": 24 * time.Hour,
}

type trendBucket struct {
	BucketStart time.Time `json:"bucket_start"`
	Channel     string    `json:"channel"`
	Source      string    `json:"source"`
	Tickets     int64     `json:"tickets"`
	Alerts      int64     `json:"alerts"`
	Suppressed  int64     `json:"suppressed"`
	Mean        float64   `json:"mean"`
	Variance    float64   `json:"variance"`
}

type trendsResponse struct {
	Window  string        `json:"window"`
	Buckets []trendBucket `json:"buckets"`
}

func (s *Server) handleTrends(c echo.Context) error {
	windowParam := c.QueryParam("window")
	if windowParam == "" {
		windowParam = "24h"
	}

	window, ok := trendWindows[windowParam]
	if !ok {
		return apperrors.ValidationError("window must be one of 1h, 6h, 24h").
			WithContext("window", windowParam)
	}

	buckets := s.trends.Snapshot(window)
	resp := trendsResponse{
		Window:  windowParam,
		Buckets: make([]trendBucket, 0, len(buckets)),
	}
	for _, b := range buckets {
		resp.Buckets = append(resp.Buckets, toTrendBucket(b))
	}

	sort.Slice(resp.Buckets, func(i, j int) bool {
		a, b := resp.Buckets[i], resp.Buckets[j]
		if !a.BucketStart.Equal(b.BucketStart) {
			return a.BucketStart.Before(b.BucketStart)
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		return a.Source < b.Source
	})

	return c.JSON(http.StatusOK, resp)
}

func toTrendBucket(agg domain.TrendAggregate) trendBucket {
	return trendBucket{
		BucketStart: agg.Key.Start,
		Channel:     agg.Key.Channel,
		Source:      agg.Key.Source,
		Tickets:     agg.Tickets,
		Alerts:      agg.Alerts,
		Suppressed:  agg.Suppressed,
		Mean:        agg.Mean,
		Variance:    agg.Variance,
	}
}
