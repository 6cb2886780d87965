package dataflows

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

const googleNewsRSSURL = "https://news.google.com/rss/search"

// GoogleNewsClient fetches headlines from the Google News RSS feed.
type GoogleNewsClient struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewGoogleNewsClient(log zerolog.Logger) *GoogleNewsClient {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; opentrade/1.0)")
	return &GoogleNewsClient{
		http: client,
		log:  log.With().Str("source", "google_news").Logger(),
	}
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	PubDate     string    `xml:"pubDate"`
	Description string    `xml:"description"`
	Source      rssSource `xml:"source"`
}

type rssSource struct {
	Name string `xml:",chardata"`
	URL  string `xml:"url,attr"`
}

// Search returns up to max recent headlines mentioning the ticker.
func (g *GoogleNewsClient) Search(ctx context.Context, ticker string, max int) ([]models.NewsItem, error) {
	query := url.Values{}
	query.Set("q", ticker+" stock")
	query.Set("hl", "en-US")
	query.Set("gl", "US")
	query.Set("ceid", "US:en")

	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(googleNewsRSSURL)
	if err != nil {
		return nil, apperrors.NewTransient("googlenews.rss", err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus("googlenews.rss", resp.StatusCode(),
			fmt.Errorf("rss feed returned %s", resp.Status()))
	}

	items, err := parseNewsRSS(resp.Body(), max)
	if err != nil {
		return nil, apperrors.NewPermanent("googlenews.rss", err)
	}

	g.log.Debug().Str("ticker", ticker).Int("items", len(items)).Msg("news fetched")
	return items, nil
}

// parseNewsRSS decodes the RSS payload and strips the HTML markup Google
// embeds in item descriptions.
func parseNewsRSS(body []byte, max int) ([]models.NewsItem, error) {
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing rss feed: %w", err)
	}

	items := make([]models.NewsItem, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if len(items) >= max {
			break
		}
		items = append(items, models.NewsItem{
			Title:     strings.TrimSpace(item.Title),
			Publisher: strings.TrimSpace(item.Source.Name),
			Published: strings.TrimSpace(item.PubDate),
			Summary:   stripHTML(item.Description),
			URL:       strings.TrimSpace(item.Link),
			Source:    "google_news",
		})
	}
	return items, nil
}

// stripHTML reduces an HTML fragment to its visible text.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(doc.Text())
}
