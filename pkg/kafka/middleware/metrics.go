package kafka_middleware

import (
	"context"

	"surfaura/pkg/kafka"
	"surfaura/pkg/metrics"
)

// MetricsProducerMiddleware counts publish outcomes.
func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		m.IncEventPublished(err == nil)
		return err
	}
}
