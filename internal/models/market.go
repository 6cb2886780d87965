package models

import "time"

// Candle represents one day of OHLCV price data.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// StockInfo holds fundamental data for a ticker. Pointer fields are nil when
// the source did not report the metric.
type StockInfo struct {
	Ticker         string   `json:"ticker"`
	Name           string   `json:"name"`
	Sector         string   `json:"sector"`
	Industry       string   `json:"industry"`
	MarketCap      float64  `json:"market_cap"`
	CurrentPrice   *float64 `json:"current_price,omitempty"`
	PERatio        *float64 `json:"pe_ratio,omitempty"`
	ForwardPE      *float64 `json:"forward_pe,omitempty"`
	DividendYield  *float64 `json:"dividend_yield,omitempty"`
	Beta           *float64 `json:"beta,omitempty"`
	High52Week     *float64 `json:"52_week_high,omitempty"`
	Low52Week      *float64 `json:"52_week_low,omitempty"`
	AvgVolume      *float64 `json:"avg_volume,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
	ProfitMargins  *float64 `json:"profit_margins,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
}

// NewsItem is one news article from any source.
type NewsItem struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
	URL       string `json:"url,omitempty"`
	Source    string `json:"source"` // "yahoo_finance" or "google_news"
}

// Filing is one SEC EDGAR filing reference.
type Filing struct {
	Form            string `json:"form"`
	FilingDate      string `json:"filing_date"`
	Description     string `json:"description"`
	AccessionNumber string `json:"accession_number"`
	URL             string `json:"url"`
}

// TrendDirection classifies search-interest movement.
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
	TrendNoData    TrendDirection = "no_data"
)

// TrendData summarizes search interest for a ticker over the lookback window.
type TrendData struct {
	Keyword         string         `json:"keyword"`
	AverageInterest float64        `json:"average_interest"`
	CurrentInterest float64        `json:"current_interest"`
	Trend           TrendDirection `json:"trend"`
	DataPoints      []float64      `json:"data_points,omitempty"`
}
