package guard

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/channel-guard/internal/logging"
	"github.com/annel0/channel-guard/internal/sim"
	"github.com/annel0/channel-guard/internal/world"
)

// Options — настройки ядра безопасности.
type Options struct {
	// PriorityThreshold — нижняя граница зарезервированной полосы
	// приоритетов; тайлы с приоритетом >= порога не управляются автоматикой.
	PriorityThreshold int32

	// RescanEveryTicks — период полного перескана в тиках симуляции.
	RescanEveryTicks uint64

	// Metrics — метрики Prometheus; nil отключает запись.
	Metrics *Metrics

	// Publisher — зеркалирование действий в шину событий; nil отключает.
	Publisher *Publisher
}

// DefaultOptions возвращает настройки по умолчанию: порог 6000, перескан
// каждые 100 тиков.
func DefaultOptions() Options {
	return Options{
		PriorityThreshold: 6000,
		RescanEveryTicks:  100,
	}
}

// Manager — оркестратор ядра: последовательно выполняет полные пересканы и
// точечные инкрементальные обновления, будучи единственным потребителем
// колбэков EventBridge. Всё состояние перестраивается из содержимого карты
// при каждом полном перескане.
type Manager struct {
	grid world.Grid
	jobs *sim.JobList

	tracker   *ComponentTracker
	registry  *DigJobRegistry
	canceller *JobCanceller
	gate      *SafetyGate

	enabled        bool
	rescanEvery    uint64
	lastRescanTick uint64

	metrics   *Metrics
	publisher *Publisher
	tracer    trace.Tracer
	log       *logging.Logger

	cancelledTotal uint64
	rescansTotal   uint64
}

// NewManager собирает ядро над предоставленными адаптерами карты и задач
func NewManager(grid world.Grid, jobs *sim.JobList, opts Options) *Manager {
	if opts.RescanEveryTicks == 0 {
		opts.RescanEveryTicks = DefaultOptions().RescanEveryTicks
	}
	if opts.PriorityThreshold == 0 {
		opts.PriorityThreshold = DefaultOptions().PriorityThreshold
	}

	tracker := NewComponentTracker(grid)
	registry := NewDigJobRegistry()
	canceller := NewJobCanceller(grid, jobs, registry, opts.Metrics, opts.Publisher)
	gate := NewSafetyGate(grid, tracker, registry, canceller, opts.PriorityThreshold, opts.Metrics, opts.Publisher)

	return &Manager{
		grid:        grid,
		jobs:        jobs,
		tracker:     tracker,
		registry:    registry,
		canceller:   canceller,
		gate:        gate,
		rescanEvery: opts.RescanEveryTicks,
		metrics:     opts.Metrics,
		publisher:   opts.Publisher,
		tracer:      otel.Tracer("channel-guard"),
		log:         logging.GetGuardLogger(),
	}
}

// Attach подписывает менеджер на колбэки моста симуляции
func (m *Manager) Attach(bridge *sim.EventBridge) {
	bridge.OnTick(m.HandleTick)
	bridge.OnJobInitiated(m.HandleJobInitiated)
	bridge.OnJobCompleted(m.HandleJobCompleted)
	bridge.OnWorldState(m.HandleWorldState)
}

// Enabled сообщает, активно ли ядро
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Enable включает ядро и сразу выполняет полный перескан
func (m *Manager) Enable(ctx context.Context) {
	if m.enabled {
		return
	}
	m.enabled = true
	m.log.Info("управление канальными назначениями включено")
	m.Rescan(ctx)
}

// Disable выключает ядро; состояние карты не откатывается
func (m *Manager) Disable() {
	m.enabled = false
	m.log.Info("управление канальными назначениями выключено")
}

// HandleTick выполняет полный перескан, когда с прошлого перескана прошло
// не меньше настроенного числа тиков
func (m *Manager) HandleTick(counter uint64) {
	if !m.enabled {
		return
	}
	if counter-m.lastRescanTick < m.rescanEvery {
		return
	}
	m.lastRescanTick = counter
	m.Rescan(context.Background())
}

// HandleWorldState выполняет полный перескан на переходах состояния мира
// (загрузка карты, пауза, снятие с паузы)
func (m *Manager) HandleWorldState(kind sim.WorldStateKind) {
	if !m.enabled {
		return
	}
	m.log.Debug("переход состояния мира: %s, перескан", kind)
	m.Rescan(context.Background())
}

// HandleJobInitiated оценивает тайл непосредственно над тайлом только что
// начатой задачи выемки: начинать работу под незавершённым каналом сверху —
// ровно то небезопасное условие, от которого защищает ядро.
func (m *Manager) HandleJobInitiated(job *sim.Job) {
	if !m.enabled || job == nil || !job.Kind.IsExcavation() {
		return
	}
	m.gate.Evaluate(job.Pos.Above())
}

// HandleJobCompleted исключает завершённый тайл из учёта готовности, затем
// оценивает тайл на слой ниже (завершение могло удовлетворить зависимость)
// и 8 соседей того же слоя, чьи группы могли быть затронуты транзитивно.
func (m *Manager) HandleJobCompleted(job *sim.Job) {
	if !m.enabled || job == nil || !job.Kind.IsExcavation() {
		return
	}

	m.tracker.Remove(job.Pos)
	m.registry.Remove(job)

	m.gate.Evaluate(job.Pos.Below())
	for _, n := range job.Pos.Neighbours8() {
		m.gate.Evaluate(n)
	}
}

// Rescan полностью перестраивает трекер групп и реестр задач из текущего
// содержимого карты и прогоняет гейт по каждому отслеживаемому тайлу.
func (m *Manager) Rescan(ctx context.Context) {
	ctx, span := m.tracer.Start(ctx, "guard.rescan")
	defer span.End()

	start := time.Now()
	cancelledBefore := m.jobs.Len()

	m.tracker.Rebuild()
	m.registry.Rebuild(m.jobs)

	for _, pos := range m.tracker.TrackedTiles() {
		m.gate.Evaluate(pos)
	}

	cancelled := cancelledBefore - m.jobs.Len()
	if cancelled < 0 {
		cancelled = 0
	}
	m.cancelledTotal += uint64(cancelled)
	m.rescansTotal++

	groups := m.tracker.GroupCount()
	tiles := m.tracker.TileCount()
	dur := time.Since(start)

	span.SetAttributes(
		attribute.Int("guard.groups", groups),
		attribute.Int("guard.tracked_tiles", tiles),
		attribute.Int("guard.cancelled", cancelled),
	)

	m.metrics.IncRescans()
	m.metrics.SetTrackerState(groups, m.tracker.FreeSlotCount(), tiles)
	m.publisher.RescanDone(m.lastRescanTick, groups, tiles, cancelled, dur)
	m.log.Debug("перескан: групп=%d тайлов=%d отозвано=%d за %s", groups, tiles, cancelled, dur)
}
