package notification

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// Mode selects between a regular report and a test send.
type Mode string

// Dispatch modes.
const (
	ModeNormal Mode = "normal"
	ModeTest   Mode = "test"
)

// ParseMode maps a user-supplied string onto a Mode. Empty selects ModeNormal.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNormal:
		return ModeNormal, nil
	case ModeTest:
		return ModeTest, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// ForecastDays is the number of forecast entries included in a report.
const ForecastDays = 4

// DefaultSiteURL is linked from every report when no site URL is configured.
const DefaultSiteURL = "http://localhost:8000"

const dateLayout = "2006年01月02日"

// Recipient identifies who a report is rendered for.
type Recipient struct {
	SubscriptionID int64
	Email          string
}

// Rendered is a formatted report ready for delivery.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
	// Region is the display name used in the subject.
	Region string
}

// Formatter turns a weather snapshot into a report. Output depends only on
// its inputs and the injected clock.
type Formatter struct {
	siteURL  string
	location *time.Location
	now      func() time.Time
}

// FormatterOption customizes a Formatter.
type FormatterOption func(*Formatter)

// WithClock overrides the clock used for the report date stamp.
func WithClock(now func() time.Time) FormatterOption {
	return func(f *Formatter) { f.now = now }
}

// NewFormatter returns a Formatter. A nil location selects UTC.
func NewFormatter(siteURL string, loc *time.Location, opts ...FormatterOption) *Formatter {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	if loc == nil {
		loc = time.UTC
	}
	f := &Formatter{siteURL: siteURL, location: loc, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type reportData struct {
	RegionName string
	Current    *storage.WeatherSnapshot
	Forecast   []storage.ForecastCast
	Date       string
	SiteURL    string
	Email      string
	IsTest     bool
}

// Format renders the subject and both bodies of a report.
func (f *Formatter) Format(snap *storage.WeatherSnapshot, to Recipient, mode Mode) (*Rendered, error) {
	if snap == nil {
		return nil, errors.New("no weather snapshot to format")
	}

	name := snap.RegionName
	if name == "" {
		name = snap.RegionCode
	}

	forecast := snap.Forecast
	if len(forecast) > ForecastDays {
		forecast = forecast[:ForecastDays]
	}

	data := reportData{
		RegionName: name,
		Current:    snap,
		Forecast:   forecast,
		Date:       f.now().In(f.location).Format(dateLayout),
		SiteURL:    f.siteURL,
		Email:      to.Email,
		IsTest:     mode == ModeTest,
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := reportHTML.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("rendering html report: %w", err)
	}
	if err := reportText.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("rendering text report: %w", err)
	}

	return &Rendered{
		Subject: subjectFor(name, mode),
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
		Region:  name,
	}, nil
}

func subjectFor(regionName string, mode Mode) string {
	if mode == ModeTest {
		return fmt.Sprintf("🧪 [测试邮件] %s 天气预报", regionName)
	}
	return fmt.Sprintf("☀️ %s 今日天气预报", regionName)
}

// previewSubject is the subject of an ad-hoc preview send, which is not tied
// to a subscription.
func previewSubject(regionName string) string {
	return fmt.Sprintf("🧪 测试邮件 - %s 天气预报", regionName)
}

var weekdayNames = map[string]string{
	"1": "周一", "2": "周二", "3": "周三", "4": "周四",
	"5": "周五", "6": "周六", "7": "周日",
}

// weekday maps the provider's 1..7 week number to a Chinese weekday name.
func weekday(week string) string {
	if name, ok := weekdayNames[week]; ok {
		return name
	}
	return week
}

var reportHTML = htmltemplate.Must(htmltemplate.New("report.html").
	Funcs(htmltemplate.FuncMap{"weekday": weekday}).
	Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.RegionName}} 天气预报</title>
</head>
<body style="margin:0;padding:0;background-color:#eef4fb;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI','PingFang SC','Microsoft YaHei',Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#eef4fb;padding:32px 16px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:600px;width:100%;">
          {{- if .IsTest}}
          <tr>
            <td style="background-color:#fef3c7;color:#92400e;padding:12px 32px;
                       border-radius:12px 12px 0 0;font-size:13px;font-weight:600;">
              🧪 这是一封测试邮件，用于确认订阅配置是否正常。
            </td>
          </tr>
          {{- end}}
          <tr>
            <td style="background:linear-gradient(135deg,#2563eb,#38bdf8);padding:28px 32px;
                       {{- if not .IsTest}}border-radius:12px 12px 0 0;{{end}}">
              <p style="margin:0;font-size:22px;font-weight:700;color:#ffffff;">{{.RegionName}}</p>
              <p style="margin:6px 0 0;font-size:13px;color:#dbeafe;">{{.Date}} 天气预报</p>
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:28px 32px;">
              <p style="margin:0 0 12px;font-size:15px;font-weight:600;color:#1f2937;">实时天气</p>
              <table width="100%" cellpadding="6" cellspacing="0" role="presentation"
                     style="font-size:14px;color:#374151;">
                <tr><td>天气</td><td>{{.Current.Weather}}</td></tr>
                <tr><td>温度</td><td>{{.Current.Temperature}}°C</td></tr>
                <tr><td>风向</td><td>{{.Current.WindDirection}}</td></tr>
                <tr><td>风力</td><td>{{.Current.WindPower}}级</td></tr>
                <tr><td>湿度</td><td>{{.Current.Humidity}}%</td></tr>
                <tr><td>发布时间</td><td>{{.Current.ReportTime}}</td></tr>
              </table>
              {{- if .Forecast}}
              <p style="margin:24px 0 12px;font-size:15px;font-weight:600;color:#1f2937;">未来天气</p>
              <table width="100%" cellpadding="6" cellspacing="0" role="presentation"
                     style="font-size:13px;color:#374151;border-collapse:collapse;">
                <tr style="background-color:#f3f4f6;">
                  <th align="left">日期</th><th align="left">白天</th><th align="left">夜间</th><th align="left">温度</th>
                </tr>
                {{- range .Forecast}}
                <tr style="border-top:1px solid #e5e7eb;">
                  <td>{{.Date}} {{weekday .Week}}</td>
                  <td>{{.DayWeather}} {{.DayWind}}风{{.DayPower}}级</td>
                  <td>{{.NightWeather}} {{.NightWind}}风{{.NightPower}}级</td>
                  <td>{{.NightTemp}}~{{.DayTemp}}°C</td>
                </tr>
                {{- end}}
              </table>
              {{- end}}
            </td>
          </tr>
          <tr>
            <td style="background-color:#f9fafb;padding:18px 32px;
                       border-top:1px solid #e5e7eb;border-radius:0 0 12px 12px;">
              <p style="margin:0;font-size:12px;color:#9ca3af;">
                {{- if .Email}}此邮件发送至 {{.Email}}。{{end}}
                管理订阅请访问 <a href="{{.SiteURL}}" style="color:#2563eb;text-decoration:none;">{{.SiteURL}}</a>
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

var reportText = texttemplate.Must(texttemplate.New("report.txt").
	Funcs(texttemplate.FuncMap{"weekday": weekday}).
	Parse(`{{if .IsTest}}【测试邮件】这是一封测试邮件，用于确认订阅配置是否正常。

{{end}}{{.RegionName}} {{.Date}} 天气预报

实时天气
  天气: {{.Current.Weather}}
  温度: {{.Current.Temperature}}°C
  风向: {{.Current.WindDirection}}
  风力: {{.Current.WindPower}}级
  湿度: {{.Current.Humidity}}%
  发布时间: {{.Current.ReportTime}}
{{- if .Forecast}}

未来天气
{{- range .Forecast}}
  {{.Date}} {{weekday .Week}}: 白天 {{.DayWeather}} / 夜间 {{.NightWeather}}, {{.NightTemp}}~{{.DayTemp}}°C
{{- end}}
{{- end}}

管理订阅: {{.SiteURL}}
`))
