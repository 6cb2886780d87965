package dataflows

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/rs/zerolog"

	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

const quoteSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s"

// YahooClient fetches price history and fundamentals from Yahoo Finance.
type YahooClient struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewYahooClient(log zerolog.Logger) *YahooClient {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; opentrade/1.0)")
	return &YahooClient{
		http: client,
		log:  log.With().Str("source", "yahoo_finance").Logger(),
	}
}

// PriceHistory returns daily candles for the trailing window, oldest first.
func (y *YahooClient) PriceHistory(ctx context.Context, ticker string, days int) ([]models.Candle, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	params.Context = &ctx

	iter := chart.Get(params)

	var candles []models.Candle
	for iter.Next() {
		bar := iter.Bar()
		open, _ := bar.Open.Float64()
		high, _ := bar.High.Float64()
		low, _ := bar.Low.Float64()
		closePrice, _ := bar.Close.Float64()
		candles = append(candles, models.Candle{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.NewTransient("yahoo.chart", err)
	}
	if len(candles) == 0 {
		return nil, apperrors.NewPermanent("yahoo.chart",
			fmt.Errorf("%w for %s", apperrors.ErrNoData, ticker))
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })
	y.log.Debug().Str("ticker", ticker).Int("candles", len(candles)).Msg("price history fetched")
	return candles, nil
}

// yahooRaw is Yahoo's {raw, fmt} number envelope.
type yahooRaw struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"summaryProfile"`
			SummaryDetail struct {
				TrailingPE      *yahooRaw `json:"trailingPE"`
				ForwardPE       *yahooRaw `json:"forwardPE"`
				DividendYield   *yahooRaw `json:"dividendYield"`
				Beta            *yahooRaw `json:"beta"`
				FiftyTwoWeekLow *yahooRaw `json:"fiftyTwoWeekLow"`
				FiftyTwoWeekHi  *yahooRaw `json:"fiftyTwoWeekHigh"`
				AverageVolume   *yahooRaw `json:"averageVolume"`
				MarketCap       *yahooRaw `json:"marketCap"`
			} `json:"summaryDetail"`
			FinancialData struct {
				CurrentPrice   *yahooRaw `json:"currentPrice"`
				RevenueGrowth  *yahooRaw `json:"revenueGrowth"`
				ProfitMargins  *yahooRaw `json:"profitMargins"`
				DebtToEquity   *yahooRaw `json:"debtToEquity"`
				ReturnOnEquity *yahooRaw `json:"returnOnEquity"`
			} `json:"financialData"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}

// Fundamentals returns company fundamentals for the ticker. The extended
// metrics come from the quoteSummary endpoint; the name falls back to the
// basic quote when the profile is missing.
func (y *YahooClient) Fundamentals(ctx context.Context, ticker string) (*models.StockInfo, error) {
	info := &models.StockInfo{Ticker: ticker}

	if q, err := quote.Get(ticker); err == nil && q != nil {
		info.Name = q.ShortName
		price := q.RegularMarketPrice
		info.CurrentPrice = &price
	}

	var summary quoteSummaryResponse
	resp, err := y.http.R().
		SetContext(ctx).
		SetQueryParam("modules", "summaryProfile,summaryDetail,financialData").
		SetResult(&summary).
		Get(fmt.Sprintf(quoteSummaryURL, ticker))
	if err != nil {
		return nil, apperrors.NewTransient("yahoo.quoteSummary", err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus("yahoo.quoteSummary", resp.StatusCode(),
			fmt.Errorf("quoteSummary returned %s", resp.Status()))
	}
	if len(summary.QuoteSummary.Result) == 0 {
		// Basic quote data already collected is still usable.
		return info, nil
	}

	result := summary.QuoteSummary.Result[0]
	info.Sector = result.SummaryProfile.Sector
	info.Industry = result.SummaryProfile.Industry

	detail := result.SummaryDetail
	fin := result.FinancialData

	if detail.MarketCap != nil {
		info.MarketCap = detail.MarketCap.Raw
	}
	info.PERatio = rawPtr(detail.TrailingPE)
	info.ForwardPE = rawPtr(detail.ForwardPE)
	info.DividendYield = rawPtr(detail.DividendYield)
	info.Beta = rawPtr(detail.Beta)
	info.High52Week = rawPtr(detail.FiftyTwoWeekHi)
	info.Low52Week = rawPtr(detail.FiftyTwoWeekLow)
	info.AvgVolume = rawPtr(detail.AverageVolume)
	if fin.CurrentPrice != nil {
		info.CurrentPrice = rawPtr(fin.CurrentPrice)
	}
	info.RevenueGrowth = rawPtr(fin.RevenueGrowth)
	info.ProfitMargins = rawPtr(fin.ProfitMargins)
	info.DebtToEquity = rawPtr(fin.DebtToEquity)
	info.ReturnOnEquity = rawPtr(fin.ReturnOnEquity)

	return info, nil
}

func rawPtr(v *yahooRaw) *float64 {
	if v == nil {
		return nil
	}
	f := v.Raw
	return &f
}

// classifyHTTPStatus maps an HTTP failure to a retry classification. Client
// errors other than rate limiting will not heal on retry.
func classifyHTTPStatus(op string, status int, err error) error {
	switch status {
	case 429:
		return apperrors.NewTransient(op, fmt.Errorf("%w: %v", apperrors.ErrRateLimited, err))
	case 400, 401, 403, 404:
		return apperrors.NewPermanent(op, err)
	default:
		return apperrors.NewTransient(op, err)
	}
}
