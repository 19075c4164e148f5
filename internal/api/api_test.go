package api_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/weatherbrief/internal/api"
	"github.com/shaharia-lab/weatherbrief/internal/notification"
	"github.com/shaharia-lab/weatherbrief/internal/scheduler"
	"github.com/shaharia-lab/weatherbrief/internal/service"
	svcmocks "github.com/shaharia-lab/weatherbrief/internal/service/mocks"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

type published struct {
	eventType string
	payload   map[string]string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(eventType string, payload map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{eventType, payload})
}

type staticLister []scheduler.JobInfo

func (l staticLister) Jobs() []scheduler.JobInfo { return l }

// testHarness bundles the mocks and router used by every test.
type testHarness struct {
	jobSvc     *svcmocks.MockJobService
	weatherSvc *svcmocks.MockWeatherService
	publisher  *recordingPublisher
	router     chi.Router
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	jobSvc := new(svcmocks.MockJobService)
	weatherSvc := new(svcmocks.MockWeatherService)
	pub := &recordingPublisher{}
	lister := staticLister{{Name: scheduler.JobDailyBatch, Cron: "0 6 * * *"}}

	srv := api.New(jobSvc, weatherSvc, pub, lister, slog.Default())

	r := chi.NewRouter()
	srv.Mount(r)

	t.Cleanup(func() {
		jobSvc.AssertExpectations(t)
		weatherSvc.AssertExpectations(t)
	})

	return &testHarness{jobSvc: jobSvc, weatherSvc: weatherSvc, publisher: pub, router: r}
}

func (h *testHarness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

// ---------- Jobs ----------

func TestDailyBatch(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		setup      func(h *testHarness)
		wantStatus int
		wantEvents int
	}{
		{
			name:  "sync run",
			query: "",
			setup: func(h *testHarness) {
				h.jobSvc.On("RunBatchFor", mock.Anything, service.Filter{}).Return(&service.BatchSummary{
					BatchResult: notification.BatchResult{Success: 2, Failure: 1},
					Message:     "sent daily weather emails: success 2, failure 1",
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "filtered by user",
			query: "?user_id=7",
			setup: func(h *testHarness) {
				h.jobSvc.On("RunBatchFor", mock.Anything, service.Filter{UserID: 7}).
					Return(&service.BatchSummary{Message: "no active subscriptions"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "async enqueues",
			query:      "?async=true",
			setup:      func(*testHarness) {},
			wantStatus: http.StatusAccepted,
			wantEvents: 1,
		},
		{
			name:       "async with filter rejected",
			query:      "?async=true&subscription_id=3",
			setup:      func(*testHarness) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid user id",
			query:      "?user_id=abc",
			setup:      func(*testHarness) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "store failure",
			query: "",
			setup: func(h *testHarness) {
				h.jobSvc.On("RunBatchFor", mock.Anything, service.Filter{}).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			w := h.do(httptest.NewRequest(http.MethodPost, "/jobs/daily-batch"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Len(t, h.publisher.events, tt.wantEvents)
			if tt.wantEvents > 0 {
				assert.Equal(t, service.EventDailyBatch, h.publisher.events[0].eventType)
			}
		})
	}
}

func TestDailyBatch_DryRun(t *testing.T) {
	h := newHarness(t)
	h.jobSvc.On("Eligible", mock.Anything, service.Filter{SubscriptionID: 4}).
		Return([]*storage.Subscription{{ID: 4, Email: "a@example.com", RegionCode: "110101", Active: true}}, nil)

	w := h.do(httptest.NewRequest(http.MethodPost, "/jobs/daily-batch?dry_run=true&subscription_id=4", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var subs []storage.Subscription
	require.NoError(t, json.NewDecoder(w.Body).Decode(&subs))
	require.Len(t, subs, 1)
	assert.Equal(t, "a@example.com", subs[0].Email)
	h.jobSvc.AssertNotCalled(t, "RunBatchFor", mock.Anything, mock.Anything)
}

func TestCleanup(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantDays   int
		wantStatus int
	}{
		{"default retention", "", 0, http.StatusOK},
		{"explicit retention", "?retention_days=7", 7, http.StatusOK},
		{"invalid retention", "?retention_days=-1", 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.wantStatus == http.StatusOK {
				h.jobSvc.On("CleanupOldLogs", mock.Anything, tt.wantDays).
					Return(&service.CleanupSummary{Deleted: 3, Cutoff: time.Now()}, nil)
			}

			w := h.do(httptest.NewRequest(http.MethodPost, "/jobs/cleanup"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestPing(t *testing.T) {
	h := newHarness(t)
	h.jobSvc.On("Ping", mock.Anything).Return("scheduler ping ok at 2024-05-01 06:00:00")

	w := h.do(httptest.NewRequest(http.MethodGet, "/jobs/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "scheduler ping ok at 2024-05-01 06:00:00", decodeBody(t, w)["message"])
}

func TestListJobs(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/jobs", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var jobs []scheduler.JobInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, scheduler.JobDailyBatch, jobs[0].Name)
}

func TestTestEmail(t *testing.T) {
	h := newHarness(t)
	h.jobSvc.On("SendPreview", mock.Anything, "ops@example.com", "110101").
		Return(service.SendResult{Success: true, Message: "test email sent to ops@example.com"})

	body := strings.NewReader(`{"to":"ops@example.com","region":"110101"}`)
	w := h.do(httptest.NewRequest(http.MethodPost, "/jobs/test-email", body))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTestEmail_InvalidBody(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodPost, "/jobs/test-email", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---------- Subscriptions ----------

func TestSendSubscription(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(h *testHarness)
		wantStatus int
	}{
		{
			name: "normal mode success",
			path: "/subscriptions/5/send",
			setup: func(h *testHarness) {
				h.jobSvc.On("SendOne", mock.Anything, int64(5), notification.ModeNormal).
					Return(service.SendResult{Success: true, Message: "sent"})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "test mode failure",
			path: "/subscriptions/5/send?mode=test",
			setup: func(h *testHarness) {
				h.jobSvc.On("SendOne", mock.Anything, int64(5), notification.ModeTest).
					Return(service.SendResult{Message: "subscription 5 does not exist or is inactive"})
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "bad mode",
			path:       "/subscriptions/5/send?mode=loud",
			setup:      func(*testHarness) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad id",
			path:       "/subscriptions/x/send",
			setup:      func(*testHarness) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			w := h.do(httptest.NewRequest(http.MethodPost, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSendSubscription_Async(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodPost, "/subscriptions/9/send?mode=test&async=true", nil))

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, h.publisher.events, 1)
	ev := h.publisher.events[0]
	assert.Equal(t, service.EventSendOne, ev.eventType)
	assert.Equal(t, map[string]string{"subscription_id": "9", "mode": "test"}, ev.payload)
}

// ---------- Notifications ----------

func TestListNotificationLog(t *testing.T) {
	h := newHarness(t)
	entries := []storage.NotificationLogEntry{
		{ID: 2, SubscriptionID: 1, Subject: "邮件发送失败", Success: false},
		{ID: 1, SubscriptionID: 1, Subject: "☀️ 北京市 今日天气预报", Success: true},
	}
	h.jobSvc.On("ListLog", mock.Anything, 10).Return(entries, nil)

	w := h.do(httptest.NewRequest(http.MethodGet, "/notifications?limit=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []storage.NotificationLogEntry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Len(t, got, 2)
}

func TestListNotificationLog_DefaultLimit(t *testing.T) {
	h := newHarness(t)
	h.jobSvc.On("ListLog", mock.Anything, 0).Return([]storage.NotificationLogEntry{}, nil)

	w := h.do(httptest.NewRequest(http.MethodGet, "/notifications?limit=abc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// ---------- Weather ----------

func TestRegionWeather(t *testing.T) {
	tests := []struct {
		name       string
		snap       *storage.WeatherSnapshot
		err        error
		wantStatus int
	}{
		{
			name:       "found",
			snap:       &storage.WeatherSnapshot{RegionCode: "110101", Weather: "晴", Temperature: "25"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "never fetched",
			err:        &service.NotFoundError{Resource: "weather snapshot", ID: "110101"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "store failure",
			err:        errors.New("disk I/O error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.weatherSvc.On("LatestSnapshot", mock.Anything, "110101").Return(tt.snap, tt.err)

			w := h.do(httptest.NewRequest(http.MethodGet, "/regions/110101/weather", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err != nil {
				assert.NotEmpty(t, decodeBody(t, w)["error"])
			}
		})
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	w := h.do(httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev", decodeBody(t, w)["version"])
}
