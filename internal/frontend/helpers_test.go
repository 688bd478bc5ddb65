package frontend

import (
	"github.com/prometheus/client_golang/prometheus/testutil"

	"salt_portal/internal/metrics"
)

func testutilCount(m *metrics.Metrics, transition, result string) float64 {
	return testutil.ToFloat64(m.AuthTransitions.WithLabelValues(transition, result))
}
