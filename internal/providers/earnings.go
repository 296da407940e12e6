package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leapscope/leapscope/pkg/httputil"
	"github.com/leapscope/leapscope/pkg/logger"
	"github.com/leapscope/leapscope/pkg/redis"
)

const earningsTTL = 24 * time.Hour

// EarningsCalendar scrapes the next scheduled earnings date from a public
// calendar page. Tradier has no earnings endpoint, so this fills the
// EarningsProvider slot.
type EarningsCalendar struct {
	baseURL string
	http    *httputil.Client
	cache   *redis.Cache
	logger  *logger.Logger
}

// NewEarningsCalendar creates the scraper. baseURL defaults to the Yahoo
// Finance calendar when empty.
func NewEarningsCalendar(baseURL string, http *httputil.Client, cache *redis.Cache, log *logger.Logger) *EarningsCalendar {
	if baseURL == "" {
		baseURL = "https://finance.yahoo.com/calendar/earnings"
	}
	return &EarningsCalendar{baseURL: baseURL, http: http, cache: cache, logger: log}
}

// NextEarningsDate returns the soonest future earnings date for the
// symbol, or nil when the calendar lists none. Scrape failures surface as
// errors; the scanner treats them as a missing earnings read, not a scan
// failure.
func (e *EarningsCalendar) NextEarningsDate(ctx context.Context, symbol string) (*time.Time, error) {
	cacheKey := "earnings:" + symbol
	var cached string
	if hit, _ := e.cache.Get(ctx, cacheKey, &cached); hit {
		if cached == "" {
			return nil, nil
		}
		d, err := time.Parse("2006-01-02", cached)
		if err == nil {
			return &d, nil
		}
	}

	endpoint := fmt.Sprintf("%s?symbol=%s", e.baseURL, url.QueryEscape(symbol))
	resp, err := e.http.Get(ctx, endpoint, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("earnings page fetch failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("earnings page parse failed for %s: %w", symbol, err)
	}

	next := e.parseNextDate(doc, symbol, time.Now())

	if next == nil {
		_ = e.cache.Set(ctx, cacheKey, "", earningsTTL)
		return nil, nil
	}
	_ = e.cache.Set(ctx, cacheKey, next.Format("2006-01-02"), earningsTTL)
	return next, nil
}

// parseNextDate walks the calendar table and keeps the earliest date at or
// after now. Row layout: symbol, company, event name, call time, date.
func (e *EarningsCalendar) parseNextDate(doc *goquery.Document, symbol string, now time.Time) *time.Time {
	var next *time.Time

	doc.Find("table tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		if !strings.EqualFold(strings.TrimSpace(cells.Eq(0).Text()), symbol) {
			return
		}

		for j := 2; j < cells.Length(); j++ {
			text := strings.TrimSpace(cells.Eq(j).Text())
			d, err := parseCalendarDate(text)
			if err != nil {
				continue
			}
			if d.Before(now.Truncate(24 * time.Hour)) {
				continue
			}
			if next == nil || d.Before(*next) {
				next = &d
			}
			break
		}
	})

	if next != nil {
		e.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"date":   next.Format("2006-01-02"),
		}).Debug("earnings date found")
	}
	return next
}

var calendarDateLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"Jan 02, 2006",
	"01/02/2006",
}

func parseCalendarDate(text string) (time.Time, error) {
	// Strip a trailing time-of-day annotation like "Oct 30, 2026, 4 PM".
	for _, layout := range calendarDateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, nil
		}
		if idx := strings.LastIndex(text, ","); idx > 0 {
			if d, err := time.Parse(layout, strings.TrimSpace(text[:idx])); err == nil {
				return d, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", text)
}
