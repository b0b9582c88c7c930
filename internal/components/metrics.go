package components

import (
	"context"

	"courtside/internal/metrics"
)

type MetricsComponent struct {
	metrics *metrics.Metrics
}

func NewMetricsComponent() *MetricsComponent {
	return &MetricsComponent{}
}

func (c *MetricsComponent) Name() string {
	return MetricsComponentName
}

func (c *MetricsComponent) Dependencies() []string {
	return []string{}
}

func (c *MetricsComponent) Validate() error {
	return nil
}

func (c *MetricsComponent) Initialize(ctx context.Context) error {
	c.metrics = metrics.New()
	return nil
}

func (c *MetricsComponent) Close(ctx context.Context) error {
	return nil
}

func (c *MetricsComponent) Metrics() *metrics.Metrics {
	return c.metrics
}
