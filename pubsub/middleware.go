package pubsub

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"luxetravel/metrics"
)

func useMiddlewares(router *message.Router, watermillLogger watermill.LoggerAdapter) {
	router.AddMiddleware(middleware.Recoverer)

	// The retry budget backs the orphan reconciliation handler, which talks
	// to the ticket service over HTTP. Five attempts with backoff covers a
	// short outage; anything longer is redelivered by the subscriber.
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      5,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)

	router.AddMiddleware(observeMiddleware)
}

// observeMiddleware wraps every handler invocation in a trace span, a log
// line pair and the message-processing metrics.
func observeMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		topic := message.SubscribeTopicFromCtx(msg.Context())
		handler := message.HandlerNameFromCtx(msg.Context())

		ctx := otel.GetTextMapPropagator().Extract(msg.Context(), propagation.MapCarrier(msg.Metadata))
		ctx, span := otel.Tracer("").Start(ctx, "message handling: "+topic+"/"+handler)
		span.SetAttributes(
			attribute.String("topic", topic),
			attribute.String("handler", handler),
		)
		defer span.End()
		msg.SetContext(ctx)

		logger := logrus.WithFields(logrus.Fields{
			"message_id": msg.UUID,
			"handler":    handler,
			"trace_id":   trace.SpanFromContext(ctx).SpanContext().TraceID().String(),
		})
		logger.Info("Handling a message")

		start := time.Now()
		msgs, err := next(msg)

		labels := prometheus.Labels{"topic": topic, "handler": handler}
		metrics.MessagesProcessed.With(labels).Inc()
		metrics.MessagesProcessingDuration.With(labels).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.MessagesProcessingFailed.With(labels).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.WithError(err).Error("Error while handling a message")
		}

		return msgs, err
	}
}
