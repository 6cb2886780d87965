package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

const (
	trendsExploreURL = "https://trends.google.com/trends/api/explore"
	trendsDataURL    = "https://trends.google.com/trends/api/widgetdata/multiline"
)

// TrendsClient fetches search-interest series from the unofficial Google
// Trends API. The endpoints prefix their JSON payloads with an XSSI guard
// that must be stripped before decoding.
type TrendsClient struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewTrendsClient(log zerolog.Logger) *TrendsClient {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; opentrade/1.0)")
	return &TrendsClient{
		http: client,
		log:  log.With().Str("source", "google_trends").Logger(),
	}
}

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Value []float64 `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// InterestOverTime fetches the interest series for a keyword and classifies
// its direction. The explore call issues a widget token that authorizes the
// data call.
func (t *TrendsClient) InterestOverTime(ctx context.Context, keyword, timeframe string) (*models.TrendData, error) {
	exploreReq := map[string]interface{}{
		"comparisonItem": []map[string]string{
			{"keyword": keyword, "geo": "", "time": timeframe},
		},
		"category": 0,
		"property": "",
	}
	reqJSON, err := json.Marshal(exploreReq)
	if err != nil {
		return nil, apperrors.NewPermanent("trends.explore", err)
	}

	resp, err := t.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"hl":  "en-US",
			"tz":  "0",
			"req": string(reqJSON),
		}).
		Get(trendsExploreURL)
	if err != nil {
		return nil, apperrors.NewTransient("trends.explore", err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus("trends.explore", resp.StatusCode(),
			fmt.Errorf("explore returned %s", resp.Status()))
	}

	var explore exploreResponse
	if err := json.Unmarshal(stripXSSIGuard(resp.Body()), &explore); err != nil {
		return nil, apperrors.NewPermanent("trends.explore", fmt.Errorf("parsing explore response: %w", err))
	}

	var token string
	var widgetReq json.RawMessage
	for _, widget := range explore.Widgets {
		if widget.ID == "TIMESERIES" {
			token = widget.Token
			widgetReq = widget.Request
			break
		}
	}
	if token == "" {
		return nil, apperrors.NewPermanent("trends.explore",
			fmt.Errorf("%w: no timeseries widget for %s", apperrors.ErrNoData, keyword))
	}

	resp, err = t.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"hl":    "en-US",
			"tz":    "0",
			"req":   string(widgetReq),
			"token": token,
		}).
		Get(trendsDataURL)
	if err != nil {
		return nil, apperrors.NewTransient("trends.multiline", err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus("trends.multiline", resp.StatusCode(),
			fmt.Errorf("multiline returned %s", resp.Status()))
	}

	var data multilineResponse
	if err := json.Unmarshal(stripXSSIGuard(resp.Body()), &data); err != nil {
		return nil, apperrors.NewPermanent("trends.multiline", fmt.Errorf("parsing timeline: %w", err))
	}

	points := make([]float64, 0, len(data.Default.TimelineData))
	for _, point := range data.Default.TimelineData {
		if len(point.Value) > 0 {
			points = append(points, point.Value[0])
		}
	}

	trend := summarizeTrend(keyword, points)
	t.log.Debug().Str("keyword", keyword).Int("points", len(points)).
		Str("trend", string(trend.Trend)).Msg("trends fetched")
	return trend, nil
}

// stripXSSIGuard removes the ")]}'" prefix Google prepends to JSON payloads.
func stripXSSIGuard(body []byte) []byte {
	text := string(body)
	if idx := strings.IndexAny(text, "{["); idx > 0 {
		return []byte(text[idx:])
	}
	return body
}

// summarizeTrend classifies a series as rising when the recent half of the
// window averages 15% above the earlier half, declining when 15% below,
// and stable otherwise.
func summarizeTrend(keyword string, points []float64) *models.TrendData {
	if len(points) == 0 {
		return &models.TrendData{Keyword: keyword, Trend: models.TrendNoData}
	}

	var total float64
	for _, p := range points {
		total += p
	}
	average := total / float64(len(points))

	data := &models.TrendData{
		Keyword:         keyword,
		AverageInterest: average,
		CurrentInterest: points[len(points)-1],
		DataPoints:      points,
		Trend:           models.TrendStable,
	}

	if len(points) < 2 {
		return data
	}

	half := len(points) / 2
	var firstSum, secondSum float64
	for _, p := range points[:half] {
		firstSum += p
	}
	for _, p := range points[half:] {
		secondSum += p
	}
	firstAvg := firstSum / float64(half)
	secondAvg := secondSum / float64(len(points)-half)

	switch {
	case firstAvg == 0:
		if secondAvg > 0 {
			data.Trend = models.TrendRising
		}
	case secondAvg > firstAvg*1.15:
		data.Trend = models.TrendRising
	case secondAvg < firstAvg*0.85:
		data.Trend = models.TrendDeclining
	}
	return data
}
