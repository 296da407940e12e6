package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapscope/leapscope/pkg/config"
	"github.com/leapscope/leapscope/pkg/httputil"
	"github.com/leapscope/leapscope/pkg/logger"
	"github.com/leapscope/leapscope/pkg/redis"
)

func calendarHTML(rows string) string {
	return fmt.Sprintf(`<html><body>
		<table><tbody>%s</tbody></table>
	</body></html>`, rows)
}

func calendarRow(symbol, date string) string {
	return fmt.Sprintf(
		`<tr><td>%s</td><td>Some Co</td><td>Q3 Earnings</td><td>After Close</td><td>%s</td></tr>`,
		symbol, date)
}

func testCalendar(t *testing.T, html string) *EarningsCalendar {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)

	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	log := logger.NewNop()
	return NewEarningsCalendar(srv.URL, httputil.New(100, 5*time.Second, log),
		redis.NewCache(client, "test"), log)
}

func TestNextEarningsDate(t *testing.T) {
	future := time.Now().AddDate(0, 0, 20).Format("2006-01-02")
	cal := testCalendar(t, calendarHTML(calendarRow("AAPL", future)))

	got, err := cal.NextEarningsDate(context.Background(), "AAPL")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, future, got.Format("2006-01-02"))
}

func TestNextEarningsDatePicksEarliestFuture(t *testing.T) {
	past := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	near := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	far := time.Now().AddDate(0, 0, 100).Format("2006-01-02")
	cal := testCalendar(t, calendarHTML(
		calendarRow("AAPL", past)+calendarRow("AAPL", far)+calendarRow("AAPL", near)))

	got, err := cal.NextEarningsDate(context.Background(), "AAPL")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, near, got.Format("2006-01-02"))
}

func TestNextEarningsDateIgnoresOtherSymbols(t *testing.T) {
	future := time.Now().AddDate(0, 0, 20).Format("2006-01-02")
	cal := testCalendar(t, calendarHTML(calendarRow("MSFT", future)))

	got, err := cal.NextEarningsDate(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseCalendarDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-10-30", "2026-10-30"},
		{"Oct 30, 2026", "2026-10-30"},
		{"Oct 30, 2026, 4 PM", "2026-10-30"},
		{"10/30/2026", "2026-10-30"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseCalendarDate(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Format("2006-01-02"))
		})
	}

	_, err := parseCalendarDate("not a date")
	assert.Error(t, err)
}
