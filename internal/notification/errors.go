package notification

import (
	"errors"
	"fmt"

	"github.com/shaharia-lab/weatherbrief/internal/weather"
)

// ErrorKind classifies a failed dispatch.
type ErrorKind string

// Dispatch error kinds.
const (
	KindRegionNotFound     ErrorKind = "region_not_found"
	KindWeatherFetchFailed ErrorKind = "weather_fetch_failed"
	KindFormatFailed       ErrorKind = "format_failed"
	KindSendFailed         ErrorKind = "send_failed"
)

// DispatchError is the failure carried by an unsuccessful Outcome.
type DispatchError struct {
	Kind  ErrorKind
	Cause error
}

func (e *DispatchError) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *DispatchError) Unwrap() error { return e.Cause }

// KindOf returns the dispatch error kind of err, or "" if err is not a DispatchError.
func KindOf(err error) ErrorKind {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// classifyFetchError maps a weather service error onto a dispatch error kind.
// Persistence failures count as fetch failures.
func classifyFetchError(err error) ErrorKind {
	if errors.Is(err, weather.ErrRegionNotFound) {
		return KindRegionNotFound
	}
	return KindWeatherFetchFailed
}

// failureSubject is the log subject recorded for a failed dispatch.
func failureSubject(kind ErrorKind, mode Mode) string {
	fetchStage := kind == KindRegionNotFound || kind == KindWeatherFetchFailed
	switch {
	case fetchStage && mode == ModeTest:
		return "测试邮件 - 天气数据获取失败"
	case fetchStage:
		return "天气数据获取失败"
	case mode == ModeTest:
		return "测试邮件发送失败"
	default:
		return "邮件发送失败"
	}
}
