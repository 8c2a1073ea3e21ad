package authenticator

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "credential.authenticator"

type recorder struct {
	opts     *options
	tracer   trace.Tracer
	attempts metric.Int64Counter
}

func newRecorder(o *options) *recorder {
	counter, err := o.ins.Meter(scopeName).Int64Counter("credential.attempts",
		metric.WithDescription("Authenticate calls by stage and status"))
	if err != nil {
		counter = metricnoop.Int64Counter{}
	}

	return &recorder{opts: o, tracer: o.ins.Tracer(scopeName), attempts: counter}
}

// attempt tracks one Authenticate call.
type attempt struct {
	ctx      context.Context
	span     trace.Span
	stage    entity.StageID
	username string
	platform entity.Platform
}

func (r *recorder) begin(ctx context.Context, stage entity.StageID, username string, platform entity.Platform) *attempt {
	if instrument.AttemptID(ctx) == "" {
		ctx = instrument.WithAttemptID(ctx, r.opts.ids.Generate())
	}

	ctx, span := r.tracer.Start(ctx, scopeName+"/"+stage.String(), trace.WithAttributes(
		attribute.String("credential.stage", stage.String()),
		attribute.String("credential.platform", platform.String()),
	))

	return &attempt{ctx: ctx, span: span, stage: stage, username: username, platform: platform}
}

func (r *recorder) end(a *attempt, status entity.Status, err error) {
	defer a.span.End()

	outcome := status.String()
	if err != nil {
		outcome = "error"
		a.span.RecordError(err)
		a.span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(a.ctx, "authentication stage failed", "stage", a.stage.String(), "username", a.username, "error", err)
	} else {
		slog.InfoContext(a.ctx, "authentication stage completed", "stage", a.stage.String(), "username", a.username, "status", outcome)
	}

	a.span.SetAttributes(attribute.String("credential.status", outcome))
	r.attempts.Add(a.ctx, 1, metric.WithAttributes(
		attribute.String("stage", a.stage.String()),
		attribute.String("status", outcome),
	))

	if r.opts.audit == nil {
		return
	}
	ev := entity.AttemptEvent{
		AttemptID:  instrument.AttemptID(a.ctx),
		Username:   a.username,
		Platform:   a.platform.String(),
		Stage:      a.stage.String(),
		Status:     outcome,
		OccurredAt: r.opts.clock.Now(),
	}
	if perr := r.opts.audit.PublishAttempt(a.ctx, ev); perr != nil {
		slog.WarnContext(a.ctx, "failed to publish attempt event", "error", perr)
	}
}
