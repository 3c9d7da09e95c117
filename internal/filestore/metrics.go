package filestore

import "github.com/prometheus/client_golang/prometheus"

const (
	labelCollection = "collection"
	labelOp         = "op"
	labelResult     = "result"
)

type Metrics struct {
	Ops         *prometheus.CounterVec
	SaveLatency *prometheus.HistogramVec
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_operations_total",
				Help: "Collection operations by result",
			},
			[]string{labelCollection, labelOp, labelResult},
		),
		SaveLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_save_duration_seconds",
				Help:    "Time spent rewriting a collection file",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{labelCollection},
		),
	}

	reg.MustRegister(m.Ops, m.SaveLatency)
	return m
}
