package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	PoolOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pool",
			Name:      "operations_total",
			Help:      "Pool engine operations by name and outcome",
		},
		[]string{"op", "outcome"},
	)

	BlockedAmount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "blocked_amount",
			Help:      "Stablecoin reserved against open bets, in base units",
		},
		[]string{"asset"},
	)

	InvestedAmount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "invested_amount",
			Help:      "Invested principal, in base units",
		},
		[]string{"asset"},
	)

	SharePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pool",
			Name:      "share_price",
			Help:      "Last published share price in centi-units",
		},
		[]string{"asset", "side"},
	)

	SolvencyViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pool",
			Name:      "solvency_violations_total",
			Help:      "Solvency checks where blocked exceeded the pool balance",
		},
		[]string{"asset"},
	)
)

func Init() {
	prometheus.MustRegister(HttpRequests)
	prometheus.MustRegister(PoolOperations)
	prometheus.MustRegister(BlockedAmount)
	prometheus.MustRegister(InvestedAmount)
	prometheus.MustRegister(SharePrice)
	prometheus.MustRegister(SolvencyViolations)
}

func ObserveOperation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PoolOperations.WithLabelValues(op, outcome).Inc()
}
