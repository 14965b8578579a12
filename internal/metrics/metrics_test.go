package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	labels := map[string]string{"outcome": OutcomeAccepted}
	before := counterValue(t, "taskearn_withdraw_requests_total", labels)
	WithdrawRequests.WithLabelValues(OutcomeAccepted).Inc()
	assert.Equal(t, before+1, counterValue(t, "taskearn_withdraw_requests_total", labels))

	before = counterValue(t, "taskearn_referral_bonuses_total", nil)
	ReferralBonuses.Inc()
	assert.Equal(t, before+1, counterValue(t, "taskearn_referral_bonuses_total", nil))
}

func TestUpdatesByType(t *testing.T) {
	Updates.WithLabelValues("message").Inc()
	Updates.WithLabelValues("callback_query").Inc()
	assert.GreaterOrEqual(t, counterValue(t, "taskearn_updates_total", map[string]string{"type": "callback_query"}), 1.0)
}
