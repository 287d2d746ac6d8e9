package aws

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// DefaultNamespace is the CloudWatch namespace used when none is configured.
const DefaultNamespace = "RentalBilling"

// Metrics records counters in CloudWatch. Failures are logged and never
// surface to the caller.
type Metrics struct {
	CW        CloudWatchAPI
	Namespace string
	Service   string

	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewMetrics returns a Metrics publishing under namespace, with every
// datum carrying a Service dimension.
func NewMetrics(cw CloudWatchAPI, namespace, service string, logger *slog.Logger) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Metrics{
		CW:        cw,
		Namespace: namespace,
		Service:   service,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// Incr adds one to the named counter.
func (m *Metrics) Incr(ctx context.Context, name string) {
	m.Add(ctx, name, 1)
}

// Add records value against the named counter.
func (m *Metrics) Add(ctx context.Context, name string, value float64) {
	if err := m.put(ctx, name, value); err != nil {
		m.logger.Warn("metric not recorded", "metric", name, "error", err)
	}
}

func (m *Metrics) put(ctx context.Context, name string, value float64) error {
	datum := cwtypes.MetricDatum{
		MetricName: sdkaws.String(name),
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(value),
		Timestamp:  sdkaws.Time(m.nowFunc()),
	}
	if m.Service != "" {
		datum.Dimensions = []cwtypes.Dimension{
			{Name: sdkaws.String("Service"), Value: sdkaws.String(m.Service)},
		}
	}

	_, err := m.CW.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
