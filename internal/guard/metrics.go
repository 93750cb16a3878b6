package guard

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus-метрики ядра безопасности.
// Все методы записи безопасны для nil-получателя: компоненты, собранные
// без метрик (например, в тестах), просто ничего не публикуют.
//
// Метрики:
// * channel_guard_rescans_total — counter полных пересканов
// * channel_guard_jobs_cancelled_total — counter отозванных задач
// * channel_guard_tiles_flagged_total / tiles_cleared_total — counters изменений флага "небезопасно"
// * channel_guard_groups / free_slots / tracked_tiles — gauges состояния трекера
type Metrics struct {
	rescans      prometheus.Counter
	cancelled    prometheus.Counter
	flagged      prometheus.Counter
	cleared      prometheus.Counter
	groups       prometheus.Gauge
	freeSlots    prometheus.Gauge
	trackedTiles prometheus.Gauge
}

// NewMetrics создаёт и регистрирует метрики. При reg == nil используется
// глобальный регистр Prometheus.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		rescans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel_guard",
			Name:      "rescans_total",
			Help:      "Общее число полных пересканов карты.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel_guard",
			Name:      "jobs_cancelled_total",
			Help:      "Общее число отозванных задач выемки.",
		}),
		flagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel_guard",
			Name:      "tiles_flagged_total",
			Help:      "Сколько раз тайл отмечался небезопасным.",
		}),
		cleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "channel_guard",
			Name:      "tiles_cleared_total",
			Help:      "Сколько раз с тайла снимался флаг небезопасности.",
		}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "channel_guard",
			Name:      "groups",
			Help:      "Текущее число непустых групп канальных тайлов.",
		}),
		freeSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "channel_guard",
			Name:      "free_slots",
			Help:      "Размер пула свободных слотов арены групп.",
		}),
		trackedTiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "channel_guard",
			Name:      "tracked_tiles",
			Help:      "Число отслеживаемых канальных тайлов.",
		}),
	}

	reg.MustRegister(m.rescans, m.cancelled, m.flagged, m.cleared,
		m.groups, m.freeSlots, m.trackedTiles)
	return m
}

func (m *Metrics) IncRescans() {
	if m != nil {
		m.rescans.Inc()
	}
}

func (m *Metrics) IncCancelled() {
	if m != nil {
		m.cancelled.Inc()
	}
}

func (m *Metrics) IncFlagged() {
	if m != nil {
		m.flagged.Inc()
	}
}

func (m *Metrics) IncCleared() {
	if m != nil {
		m.cleared.Inc()
	}
}

// SetTrackerState обновляет gauges по текущему состоянию трекера
func (m *Metrics) SetTrackerState(groups, freeSlots, tiles int) {
	if m == nil {
		return
	}
	m.groups.Set(float64(groups))
	m.freeSlots.Set(float64(freeSlots))
	m.trackedTiles.Set(float64(tiles))
}
