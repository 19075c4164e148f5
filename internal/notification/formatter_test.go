package notification_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/weatherbrief/internal/notification"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

func sampleSnapshot(days int) *storage.WeatherSnapshot {
	snap := &storage.WeatherSnapshot{
		RegionCode:    "110101",
		RegionName:    "北京市 东城区",
		Weather:       "晴",
		Temperature:   "25",
		WindDirection: "南",
		WindPower:     "≤3",
		Humidity:      "40",
		ReportTime:    "2026-10-16 08:00:00",
	}
	for i := 0; i < days; i++ {
		snap.Forecast = append(snap.Forecast, storage.ForecastCast{
			Date:       time.Date(2026, 10, 16+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Week:       "5",
			DayWeather: "多云",
			DayTemp:    "24",
			NightTemp:  "12",
		})
	}
	return snap
}

func TestFormatter_Normal(t *testing.T) {
	f := notification.NewFormatter("https://weather.example.com", time.UTC,
		notification.WithClock(func() time.Time { return fixedNow }))

	r, err := f.Format(sampleSnapshot(6), notification.Recipient{Email: "alice@example.com"}, notification.ModeNormal)
	require.NoError(t, err)

	assert.Equal(t, "☀️ 北京市 东城区 今日天气预报", r.Subject)
	assert.Contains(t, r.Text, "2026年10月16日")
	assert.Contains(t, r.Text, "https://weather.example.com")
	assert.Contains(t, r.HTML, "https://weather.example.com")
	assert.Contains(t, r.Text, "周五")
	assert.NotContains(t, r.Text, "测试邮件")

	assert.Contains(t, r.Text, "2026-10-19")
	assert.NotContains(t, r.Text, "2026-10-20")
}

func TestFormatter_DateUsesConfiguredZone(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	f := notification.NewFormatter("", shanghai,
		notification.WithClock(func() time.Time { return fixedNow }))

	r, err := f.Format(sampleSnapshot(1), notification.Recipient{}, notification.ModeNormal)
	require.NoError(t, err)
	// 22:30 UTC on the 16th is already the 17th in UTC+8.
	assert.Contains(t, r.Text, "2026年10月17日")
	assert.Contains(t, r.Text, notification.DefaultSiteURL)
}

func TestFormatter_TestMode(t *testing.T) {
	f := notification.NewFormatter("", time.UTC,
		notification.WithClock(func() time.Time { return fixedNow }))

	r, err := f.Format(sampleSnapshot(2), notification.Recipient{}, notification.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, "🧪 [测试邮件] 北京市 东城区 天气预报", r.Subject)
	assert.Contains(t, r.HTML, "这是一封测试邮件")
	assert.Contains(t, r.Text, "【测试邮件】")
}

func TestFormatter_Deterministic(t *testing.T) {
	f := notification.NewFormatter("", time.UTC,
		notification.WithClock(func() time.Time { return fixedNow }))
	snap := sampleSnapshot(4)

	a, err := f.Format(snap, notification.Recipient{Email: "a@example.com"}, notification.ModeNormal)
	require.NoError(t, err)
	b, err := f.Format(snap, notification.Recipient{Email: "a@example.com"}, notification.ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFormatter_EmptyForecastAndEscaping(t *testing.T) {
	f := notification.NewFormatter("", time.UTC)
	snap := sampleSnapshot(0)
	snap.Weather = "<script>alert(1)</script>"

	r, err := f.Format(snap, notification.Recipient{}, notification.ModeNormal)
	require.NoError(t, err)
	assert.NotContains(t, r.HTML, "<script>")
	assert.NotContains(t, r.Text, "未来天气")
}

func TestFormatter_NilSnapshot(t *testing.T) {
	f := notification.NewFormatter("", time.UTC)
	_, err := f.Format(nil, notification.Recipient{}, notification.ModeNormal)
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := notification.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, notification.ModeNormal, m)

	m, err = notification.ParseMode("test")
	require.NoError(t, err)
	assert.Equal(t, notification.ModeTest, m)

	_, err = notification.ParseMode("loud")
	assert.Error(t, err)
}
