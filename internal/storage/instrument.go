package storage

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stashdrive/service/internal/errs"
)

// Observer receives the outcome of every backend call.
type Observer interface {
	ObserveStorageOp(op string, elapsed time.Duration, err error)
}

type instrumented struct {
	next   Storage
	obs    Observer
	tracer trace.Tracer
}

// Instrument wraps s so every call is traced and reported to obs.
func Instrument(s Storage, obs Observer) Storage {
	return &instrumented{
		next:   s,
		obs:    obs,
		tracer: otel.Tracer("stashdrive/storage"),
	}
}

func (i *instrumented) observe(ctx context.Context, op, key string, fn func(context.Context) error) error {
	ctx, span := i.tracer.Start(ctx, "storage."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", key))

	start := time.Now()
	err := fn(ctx)
	if i.obs != nil {
		i.obs.ObserveStorageOp(op, time.Since(start), err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errs.KindOf(err).String())
	}
	return err
}

func (i *instrumented) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := i.observe(ctx, "list", prefix, func(ctx context.Context) error {
		var err error
		out, err = i.next.List(ctx, prefix)
		return err
	})
	return out, err
}

func (i *instrumented) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return i.observe(ctx, "upload", key, func(ctx context.Context) error {
		return i.next.Upload(ctx, key, reader, size, contentType)
	})
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	return i.observe(ctx, "delete", key, func(ctx context.Context) error {
		return i.next.Delete(ctx, key)
	})
}

func (i *instrumented) Rename(ctx context.Context, oldKey, newKey string) error {
	return i.observe(ctx, "rename", oldKey, func(ctx context.Context) error {
		return i.next.Rename(ctx, oldKey, newKey)
	})
}

func (i *instrumented) PublicURL(key string) string {
	return i.next.PublicURL(key)
}
