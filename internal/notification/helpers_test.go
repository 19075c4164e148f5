package notification_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/weatherbrief/internal/notification"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
	"github.com/shaharia-lab/weatherbrief/internal/weather"
)

// fixedNow is the clock used by every formatter in these tests.
var fixedNow = time.Date(2026, 10, 16, 22, 30, 0, 0, time.UTC)

type stubProvider struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Send(_ context.Context, msg notification.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

type failingLogStore struct {
	storage.NotificationStore
}

func (failingLogStore) LogNotification(context.Context, storage.NotificationLogEntry) error {
	return errors.New("database is locked")
}

const livePayload = `{"status":"1","info":"OK","infocode":"10000","lives":[{"province":"北京","city":"东城区","adcode":"%s","weather":"晴","temperature":"25","winddirection":"南","windpower":"≤3","humidity":"40","reporttime":"2026-10-16 08:00:00"}]}`

const forecastPayload = `{"status":"1","info":"OK","infocode":"10000","forecasts":[{"city":"东城区","adcode":"%s","reporttime":"2026-10-16 08:00:00","casts":[
{"date":"2026-10-16","week":"5","dayweather":"晴","nightweather":"晴","daytemp":"26","nighttemp":"14","daywind":"南","nightwind":"南","daypower":"≤3","nightpower":"≤3"},
{"date":"2026-10-17","week":"6","dayweather":"多云","nightweather":"阴","daytemp":"24","nighttemp":"13","daywind":"北","nightwind":"北","daypower":"≤3","nightpower":"≤3"},
{"date":"2026-10-18","week":"7","dayweather":"小雨","nightweather":"小雨","daytemp":"20","nighttemp":"11","daywind":"北","nightwind":"北","daypower":"4","nightpower":"4"},
{"date":"2026-10-19","week":"1","dayweather":"晴","nightweather":"晴","daytemp":"22","nighttemp":"10","daywind":"西","nightwind":"西","daypower":"≤3","nightpower":"≤3"},
{"date":"2026-10-20","week":"2","dayweather":"阴","nightweather":"阴","daytemp":"19","nighttemp":"9","daywind":"北","nightwind":"北","daypower":"≤3","nightpower":"≤3"}]}]}`

// env wires real SQLite stores and a fake weather API behind a Dispatcher.
type env struct {
	db            *sql.DB
	subscriptions *storage.SQLiteSubscriptionStore
	snapshots     *storage.SQLiteSnapshotStore
	logs          *storage.SQLiteNotificationStore
	provider      *stubProvider
	weather       *weather.Service
	formatter     *notification.Formatter
	apiCalls      atomic.Int64
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, _, err := storage.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	regions := storage.NewSQLiteRegionStore(db)
	for _, r := range []*storage.Region{
		{Code: "110000", Name: "北京市", Level: 1},
		{Code: "110101", Name: "东城区", ParentCode: "110000", Level: 3},
		{Code: "110102", Name: "西城区", ParentCode: "110000", Level: 3},
	} {
		require.NoError(t, regions.SaveRegion(ctx, r))
	}

	e := &env{
		db:            db,
		subscriptions: storage.NewSQLiteSubscriptionStore(db),
		snapshots:     storage.NewSQLiteSnapshotStore(db),
		logs:          storage.NewSQLiteNotificationStore(db),
		provider:      &stubProvider{},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.apiCalls.Add(1)
		city := r.URL.Query().Get("city")
		if r.URL.Query().Get("extensions") == "all" {
			_, _ = fmt.Fprintf(w, forecastPayload, city)
			return
		}
		_, _ = fmt.Fprintf(w, livePayload, city)
	}))
	t.Cleanup(srv.Close)

	client := weather.NewClient(srv.URL, "test-key", time.Second)
	e.weather = weather.NewService(client, regions, e.snapshots, discardLogger())
	e.formatter = notification.NewFormatter("https://weather.example.com", time.UTC,
		notification.WithClock(func() time.Time { return fixedNow }))
	return e
}

func (e *env) dispatcher() *notification.Dispatcher {
	return notification.NewDispatcher(e.weather, e.formatter, e.provider, e.logs, discardLogger())
}

func (e *env) subscribe(t *testing.T, userID int64, region, email string) *storage.Subscription {
	t.Helper()
	sub := &storage.Subscription{UserID: userID, RegionCode: region, Email: email, Active: true}
	require.NoError(t, e.subscriptions.CreateSubscription(context.Background(), sub))
	return sub
}

func (e *env) logEntries(t *testing.T) []storage.NotificationLogEntry {
	t.Helper()
	entries, err := e.logs.ListNotifications(context.Background(), 100)
	require.NoError(t, err)
	return entries
}
