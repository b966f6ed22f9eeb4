package metrics

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/pumpsight/pumpsight/internal/simulation"
)

// Counters are process-wide; handlers record into them from any goroutine.
var (
	startTime = time.Now()

	scheduledRuns     atomic.Int64
	conditionRuns     atomic.Int64
	failuresPredicted atomic.Int64
)

// RecordSimulation counts one completed run. eventPredicted is true when the
// run crossed its failure threshold or ended in a pump replacement.
func RecordSimulation(model string, eventPredicted bool) {
	if model == simulation.ModelCondition {
		conditionRuns.Add(1)
	} else {
		scheduledRuns.Add(1)
	}
	if eventPredicted {
		failuresPredicted.Add(1)
	}
}

// Handler serves GET /metrics. The scenario and websocket client gauges are
// read through the callbacks at scrape time.
func Handler(scenarios, wsClients func() int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		format := expfmt.NewFormat(expfmt.TypeTextPlain)
		w.Header().Set("Content-Type", string(format))
		enc := expfmt.NewEncoder(w, format)
		for _, mf := range families(scenarios(), wsClients()) {
			if err := enc.Encode(mf); err != nil {
				slog.Error("metrics: encode family", "family", mf.GetName(), "err", err)
				return
			}
		}
	})
}

func families(scenarios, wsClients int) []*dto.MetricFamily {
	return []*dto.MetricFamily{
		{
			Name: proto.String("pumpsight_simulations_total"),
			Help: proto.String("Completed simulation runs by model."),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{
				counterMetric("model", simulation.ModelScheduled, float64(scheduledRuns.Load())),
				counterMetric("model", simulation.ModelCondition, float64(conditionRuns.Load())),
			},
		},
		{
			Name: proto.String("pumpsight_failures_predicted_total"),
			Help: proto.String("Runs that predicted a threshold breach or pump replacement."),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{
				{Counter: &dto.Counter{Value: proto.Float64(float64(failuresPredicted.Load()))}},
			},
		},
		gaugeFamily("pumpsight_scenarios", "Scenarios currently stored.", float64(scenarios)),
		gaugeFamily("pumpsight_ws_clients", "Connected websocket clients.", float64(wsClients)),
		gaugeFamily("pumpsight_uptime_seconds", "Seconds since process start.", time.Since(startTime).Seconds()),
	}
}

func counterMetric(label, value string, v float64) *dto.Metric {
	return &dto.Metric{
		Label:   []*dto.LabelPair{{Name: proto.String(label), Value: proto.String(value)}},
		Counter: &dto.Counter{Value: proto.Float64(v)},
	}
}

func gaugeFamily(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}

// reset clears all counters. Test use only.
func reset() {
	scheduledRuns.Store(0)
	conditionRuns.Store(0)
	failuresPredicted.Store(0)
}
