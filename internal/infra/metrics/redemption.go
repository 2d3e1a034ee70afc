package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		codesGeneratedTotal,
		codeCollisionsTotal,
		redemptionsTotal,
		qrVerificationsTotal,
		validationsRecordedTotal,
	)
}

var (
	codesGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fideliza_codes_generated_total",
			Help: "Redemption codes issued.",
		},
	)

	codeCollisionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fideliza_code_collisions_total",
			Help: "Random code draws rejected because the code already existed.",
		},
	)

	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fideliza_redemptions_total",
			Help: "Code redemption attempts by result.",
		},
		[]string{"result"}, // 'accepted', 'invalid', 'used', 'expired', 'inactive', ...
	)

	qrVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fideliza_qr_verifications_total",
			Help: "QR verifications by result.",
		},
		[]string{"result"},
	)

	validationsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fideliza_validations_recorded_total",
			Help: "Visit validation audit records written.",
		},
	)
)

func IncCodeGenerated()           { codesGeneratedTotal.Inc() }
func IncCodeCollision()           { codeCollisionsTotal.Inc() }
func IncValidationRecorded()      { validationsRecordedTotal.Inc() }
func IncRedemption(result string) { redemptionsTotal.WithLabelValues(norm(result)).Inc() }
func IncQRVerification(result string) {
	qrVerificationsTotal.WithLabelValues(norm(result)).Inc()
}
