// Package metrics はワークフローの Prometheus メトリクスを提供します。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
)

// Workflow は状態遷移と副作用の結果を数えます。i9.Metrics と review.Metrics を満たします。
type Workflow struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	sideEffects *prometheus.CounterVec
}

// NewWorkflow は専用のレジストリにメトリクスを登録して返します。
func NewWorkflow() *Workflow {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Workflow{
		registry: reg,
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "i9_workflow_transitions_total",
				Help: "Total number of I-9 workflow transitions by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		sideEffects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "i9_review_side_effects_total",
				Help: "Total number of review side effects by effect and success",
			},
			[]string{"effect", "success"},
		),
	}
}

// ObserveTransition は遷移の結果を記録します。
func (w *Workflow) ObserveTransition(action i9.Action, outcome string) {
	w.transitions.WithLabelValues(string(action), outcome).Inc()
}

// ObserveSideEffect は書類生成や通知の成否を記録します。
func (w *Workflow) ObserveSideEffect(effect string, ok bool) {
	w.sideEffects.WithLabelValues(effect, strconv.FormatBool(ok)).Inc()
}

// Registry はメトリクスのレジストリを返します。
func (w *Workflow) Registry() *prometheus.Registry {
	return w.registry
}

// Handler は /metrics 用の http.Handler を返します。
func (w *Workflow) Handler() http.Handler {
	return promhttp.HandlerFor(w.registry, promhttp.HandlerOpts{Registry: w.registry})
}
