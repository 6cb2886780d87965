// Package dataflows fetches market data, news, filings, and search trends
// from external sources. Every source degrades independently: a disabled or
// failing source yields an empty field, never a pipeline abort.
package dataflows

import (
	"context"

	"github.com/rs/zerolog"

	"opentrade/internal/config"
	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

// Provider is the facade over all market data sources.
type Provider struct {
	cfg    config.DataSourceConfig
	log    zerolog.Logger
	yahoo  *YahooClient
	news   *GoogleNewsClient
	edgar  *EdgarClient
	trends *TrendsClient
}

// NewProvider creates a Provider with all source clients wired.
func NewProvider(cfg config.DataSourceConfig, log zerolog.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		log:    log.With().Str("component", "dataflows").Logger(),
		yahoo:  NewYahooClient(log),
		news:   NewGoogleNewsClient(log),
		edgar:  NewEdgarClient(log),
		trends: NewTrendsClient(log),
	}
}

// PriceHistory returns daily candles for the trailing window. Yahoo Finance
// is the primary source and has no disable toggle: without prices there is
// nothing to analyze.
func (p *Provider) PriceHistory(ctx context.Context, ticker string, days int) ([]models.Candle, error) {
	return p.yahoo.PriceHistory(ctx, ticker, days)
}

// Fundamentals returns company fundamentals for the ticker.
func (p *Provider) Fundamentals(ctx context.Context, ticker string) (*models.StockInfo, error) {
	return p.yahoo.Fundamentals(ctx, ticker)
}

// News returns recent headlines. Disabled source yields no items and no error.
func (p *Provider) News(ctx context.Context, ticker string) ([]models.NewsItem, error) {
	if !p.cfg.EnableGoogleNews {
		p.log.Debug().Str("ticker", ticker).Msg("google news disabled, skipping")
		return nil, nil
	}
	max := p.cfg.GoogleNewsMax
	if max <= 0 {
		max = 10
	}
	return p.news.Search(ctx, ticker, max)
}

// Filings returns recent SEC filings. Disabled source yields no filings and
// no error.
func (p *Provider) Filings(ctx context.Context, ticker string) ([]models.Filing, error) {
	if !p.cfg.EnableSECEdgar {
		p.log.Debug().Str("ticker", ticker).Msg("sec edgar disabled, skipping")
		return nil, nil
	}
	max := p.cfg.SECEdgarMaxFilings
	if max <= 0 {
		max = 5
	}
	return p.edgar.RecentFilings(ctx, ticker, max)
}

// Trends returns search-interest data. Disabled source yields a no_data
// marker and no error.
func (p *Provider) Trends(ctx context.Context, keyword string) (*models.TrendData, error) {
	if !p.cfg.EnableGoogleTrends {
		p.log.Debug().Str("keyword", keyword).Msg("google trends disabled, skipping")
		return &models.TrendData{Keyword: keyword, Trend: models.TrendNoData}, nil
	}
	timeframe := p.cfg.TrendsTimeframe
	if timeframe == "" {
		timeframe = "today 3-m"
	}
	return p.trends.InterestOverTime(ctx, keyword, timeframe)
}

// Gather populates the state with everything the analysts consume. Price
// history is mandatory; every other source degrades to empty on failure
// with a log line.
func (p *Provider) Gather(ctx context.Context, state *models.TradingState, periodDays int) error {
	candles, err := p.PriceHistory(ctx, state.Ticker, periodDays)
	if err != nil {
		return apperrors.NewDataSourceError("yahoo_finance", state.Ticker, err)
	}
	state.PriceSeries = candles

	if info, err := p.Fundamentals(ctx, state.Ticker); err != nil {
		p.log.Warn().Err(err).Str("ticker", state.Ticker).Msg("fundamentals fetch failed, continuing without")
	} else {
		state.Fundamentals = info
	}

	if items, err := p.News(ctx, state.Ticker); err != nil {
		p.log.Warn().Err(err).Str("ticker", state.Ticker).Msg("news fetch failed, continuing without")
	} else {
		state.NewsItems = items
	}

	if filings, err := p.Filings(ctx, state.Ticker); err != nil {
		p.log.Warn().Err(err).Str("ticker", state.Ticker).Msg("filings fetch failed, continuing without")
	} else {
		state.Filings = filings
	}

	if trends, err := p.Trends(ctx, state.Ticker); err != nil {
		p.log.Warn().Err(err).Str("ticker", state.Ticker).Msg("trends fetch failed, continuing without")
	} else {
		state.Trends = trends
	}

	return nil
}
