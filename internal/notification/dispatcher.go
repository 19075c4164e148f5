package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaharia-lab/weatherbrief/internal/metrics"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

const sendTimeout = 30 * time.Second

// WeatherSource fetches and stores a fresh snapshot for a region.
type WeatherSource interface {
	FetchAndPersist(ctx context.Context, regionCode string) (*storage.WeatherSnapshot, error)
}

// Outcome is the result of one dispatch. Entry is the log entry that was
// written (or attempted) for it.
type Outcome struct {
	Success bool
	Entry   storage.NotificationLogEntry
	Err     error
}

// Dispatcher delivers one report to one subscription and records exactly
// one notification log entry per call.
type Dispatcher struct {
	weather   WeatherSource
	formatter *Formatter
	provider  Provider
	store     storage.NotificationStore
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(ws WeatherSource, f *Formatter, p Provider, store storage.NotificationStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		weather:   ws,
		formatter: f,
		provider:  p,
		store:     store,
		logger:    logger,
		tracer:    otel.Tracer("github.com/shaharia-lab/weatherbrief/internal/notification"),
		now:       time.Now,
	}
}

// Dispatch fetches weather for the subscription's region, renders and sends
// the report, then logs the attempt. Failures are returned in the Outcome;
// Dispatch never panics and never returns early without logging.
func (d *Dispatcher) Dispatch(ctx context.Context, sub *storage.Subscription, mode Mode) Outcome {
	ctx, span := d.tracer.Start(ctx, "notification.dispatch", trace.WithAttributes(
		attribute.Int64("subscription.id", sub.ID),
		attribute.String("region.code", sub.RegionCode),
		attribute.String("mode", string(mode)),
		attribute.String("provider", d.provider.Name()),
	))
	defer span.End()

	logger := d.logger.With(
		"subscription_id", sub.ID,
		"email", sub.Email,
		"region", sub.RegionCode,
		"mode", string(mode),
		"provider", d.provider.Name(),
	)

	rendered, err := d.render(ctx, span, sub.RegionCode, Recipient{SubscriptionID: sub.ID, Email: sub.Email}, mode)
	if err == nil {
		err = d.send(ctx, span, sub.Email, rendered)
	}

	entry := storage.NotificationLogEntry{
		SubscriptionID: sub.ID,
		Email:          sub.Email,
		Mode:           string(mode),
		CreatedAt:      d.now().UTC(),
	}
	if err == nil {
		entry.Success = true
		entry.Subject = rendered.Subject
		entry.Content = rendered.HTML
	} else {
		kind := KindOf(err)
		entry.Subject = failureSubject(kind, mode)
		entry.ErrorKind = string(kind)
		entry.ErrorMsg = err.Error()
	}

	span.AddEvent("logging")
	if logErr := d.store.LogNotification(context.WithoutCancel(ctx), entry); logErr != nil {
		metrics.LogWriteFailures.Inc()
		logger.Error("failed to write notification log entry", "error", logErr)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(entry.ErrorKind))
		metrics.DispatchTotal.WithLabelValues(string(mode), "failure").Inc()
		metrics.DispatchErrors.WithLabelValues(entry.ErrorKind).Inc()
		logger.Warn("weather report not delivered", "error_kind", entry.ErrorKind, "error", err)
		return Outcome{Success: false, Entry: entry, Err: err}
	}

	metrics.DispatchTotal.WithLabelValues(string(mode), "success").Inc()
	logger.Info("weather report delivered", "subject", entry.Subject)
	return Outcome{Success: true, Entry: entry}
}

// Preview sends a test-mode report for a region to an arbitrary address.
// No subscription is involved and nothing is logged to the notification log.
func (d *Dispatcher) Preview(ctx context.Context, email, regionCode string) error {
	ctx, span := d.tracer.Start(ctx, "notification.preview", trace.WithAttributes(
		attribute.String("region.code", regionCode),
		attribute.String("provider", d.provider.Name()),
	))
	defer span.End()

	logger := d.logger.With("email", email, "region", regionCode, "provider", d.provider.Name())

	rendered, err := d.render(ctx, span, regionCode, Recipient{Email: email}, ModeTest)
	if err == nil {
		rendered.Subject = previewSubject(rendered.Region)
		err = d.send(ctx, span, email, rendered)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
		logger.Warn("preview not delivered", "error", err)
		return err
	}
	logger.Info("preview delivered", "subject", rendered.Subject)
	return nil
}

// render runs the fetching and formatting stages.
func (d *Dispatcher) render(ctx context.Context, span trace.Span, regionCode string, to Recipient, mode Mode) (*Rendered, error) {
	span.AddEvent("fetching")
	var snap *storage.WeatherSnapshot
	err := guard(KindWeatherFetchFailed, func() error {
		var fetchErr error
		snap, fetchErr = d.weather.FetchAndPersist(ctx, regionCode)
		if fetchErr != nil {
			return &DispatchError{Kind: classifyFetchError(fetchErr), Cause: fetchErr}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.AddEvent("formatting")
	var rendered *Rendered
	err = guard(KindFormatFailed, func() error {
		var fmtErr error
		rendered, fmtErr = d.formatter.Format(snap, to, mode)
		if fmtErr != nil {
			return &DispatchError{Kind: KindFormatFailed, Cause: fmtErr}
		}
		return nil
	})
	return rendered, err
}

func (d *Dispatcher) send(ctx context.Context, span trace.Span, to string, r *Rendered) error {
	span.AddEvent("sending")
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	return guard(KindSendFailed, func() error {
		msg := Message{To: to, Subject: r.Subject, Text: r.Text, HTML: r.HTML}
		if err := d.provider.Send(sendCtx, msg); err != nil {
			return &DispatchError{Kind: KindSendFailed, Cause: err}
		}
		return nil
	})
}

// guard runs fn and converts a panic into a DispatchError of the given kind.
func guard(kind ErrorKind, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DispatchError{Kind: kind, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	return fn()
}
