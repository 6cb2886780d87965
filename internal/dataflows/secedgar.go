package dataflows

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

const (
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	submissionsURL    = "https://data.sec.gov/submissions/CIK%010d.json"
	filingArchiveURL  = "https://www.sec.gov/Archives/edgar/data/%d/%s/%s"

	// SEC requires a descriptive User-Agent with contact info and blocks
	// generic ones.
	edgarUserAgent = "opentrade research tool admin@opentrade.local"
)

// relevantForms are the filing types the fundamental analyst cares about.
var relevantForms = map[string]string{
	"10-K": "annual report",
	"10-Q": "quarterly report",
	"8-K":  "current report (material event)",
}

// EdgarClient fetches filing metadata from SEC EDGAR.
type EdgarClient struct {
	http *resty.Client
	log  zerolog.Logger

	mu       sync.Mutex
	cikCache map[string]int64
}

func NewEdgarClient(log zerolog.Logger) *EdgarClient {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", edgarUserAgent).
		SetHeader("Accept", "application/json")
	return &EdgarClient{
		http:     client,
		log:      log.With().Str("source", "sec_edgar").Logger(),
		cikCache: make(map[string]int64),
	}
}

// companyTickersResponse maps numeric string keys to ticker records.
type companyTickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

type submissionsResponse struct {
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// lookupCIK resolves a ticker to its SEC central index key. The full ticker
// table is fetched once and cached for the life of the client.
func (e *EdgarClient) lookupCIK(ctx context.Context, ticker string) (int64, error) {
	key := strings.ToUpper(ticker)

	e.mu.Lock()
	if cik, ok := e.cikCache[key]; ok {
		e.mu.Unlock()
		return cik, nil
	}
	e.mu.Unlock()

	var table map[string]companyTickerEntry
	resp, err := e.http.R().
		SetContext(ctx).
		SetResult(&table).
		Get(companyTickersURL)
	if err != nil {
		return 0, apperrors.NewTransient("edgar.tickers", err)
	}
	if resp.IsError() {
		return 0, classifyHTTPStatus("edgar.tickers", resp.StatusCode(),
			fmt.Errorf("company tickers returned %s", resp.Status()))
	}

	e.mu.Lock()
	for _, entry := range table {
		e.cikCache[strings.ToUpper(entry.Ticker)] = entry.CIK
	}
	cik, ok := e.cikCache[key]
	e.mu.Unlock()

	if !ok {
		return 0, apperrors.NewPermanent("edgar.tickers",
			fmt.Errorf("ticker %s not found in EDGAR registry", ticker))
	}
	return cik, nil
}

// RecentFilings returns the latest annual, quarterly, and material-event
// filings for the ticker, newest first.
func (e *EdgarClient) RecentFilings(ctx context.Context, ticker string, max int) ([]models.Filing, error) {
	cik, err := e.lookupCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var submissions submissionsResponse
	resp, err := e.http.R().
		SetContext(ctx).
		SetResult(&submissions).
		Get(fmt.Sprintf(submissionsURL, cik))
	if err != nil {
		return nil, apperrors.NewTransient("edgar.submissions", err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus("edgar.submissions", resp.StatusCode(),
			fmt.Errorf("submissions returned %s", resp.Status()))
	}

	filings := selectFilings(cik, &submissions, max)
	e.log.Debug().Str("ticker", ticker).Int("filings", len(filings)).Msg("filings fetched")
	return filings, nil
}

// selectFilings walks the column-oriented recent-filings arrays and keeps
// the relevant form types.
func selectFilings(cik int64, submissions *submissionsResponse, max int) []models.Filing {
	recent := submissions.Filings.Recent

	var filings []models.Filing
	for i := range recent.Form {
		if len(filings) >= max {
			break
		}
		description, ok := relevantForms[recent.Form[i]]
		if !ok {
			continue
		}
		if i >= len(recent.AccessionNumber) || i >= len(recent.FilingDate) {
			break
		}
		accession := recent.AccessionNumber[i]
		doc := ""
		if i < len(recent.PrimaryDocument) {
			doc = recent.PrimaryDocument[i]
		}
		filings = append(filings, models.Filing{
			Form:            recent.Form[i],
			FilingDate:      recent.FilingDate[i],
			Description:     description,
			AccessionNumber: accession,
			URL: fmt.Sprintf(filingArchiveURL, cik,
				strings.ReplaceAll(accession, "-", ""), doc),
		})
	}
	return filings
}
