package sim

// WorldStateKind — вид перехода состояния мира.
type WorldStateKind uint8

const (
	WorldMapLoaded WorldStateKind = iota // Карта загружена
	WorldPaused                          // Симуляция поставлена на паузу
	WorldUnpaused                        // Симуляция снята с паузы
)

// String возвращает строковое представление для логов
func (k WorldStateKind) String() string {
	switch k {
	case WorldMapLoaded:
		return "map-loaded"
	case WorldPaused:
		return "paused"
	case WorldUnpaused:
		return "unpaused"
	default:
		return "unknown"
	}
}

// EventBridge доставляет колбэки симуляции строго последовательно:
// каждый Emit* выполняет всех подписчиков до возврата управления.
// Синхронизации нет намеренно — контракт single-writer обеспечивает хост,
// вызывая Emit* только из цикла симуляции.
type EventBridge struct {
	tickHandlers     []func(counter uint64)
	initHandlers     []func(job *Job)
	completeHandlers []func(job *Job)
	stateHandlers    []func(kind WorldStateKind)
}

// NewEventBridge создаёт мост без подписчиков
func NewEventBridge() *EventBridge {
	return &EventBridge{}
}

// OnTick подписывает обработчик периодического тика
func (b *EventBridge) OnTick(fn func(counter uint64)) {
	b.tickHandlers = append(b.tickHandlers, fn)
}

// OnJobInitiated подписывает обработчик запуска задачи
func (b *EventBridge) OnJobInitiated(fn func(job *Job)) {
	b.initHandlers = append(b.initHandlers, fn)
}

// OnJobCompleted подписывает обработчик завершения задачи
func (b *EventBridge) OnJobCompleted(fn func(job *Job)) {
	b.completeHandlers = append(b.completeHandlers, fn)
}

// OnWorldState подписывает обработчик перехода состояния мира
func (b *EventBridge) OnWorldState(fn func(kind WorldStateKind)) {
	b.stateHandlers = append(b.stateHandlers, fn)
}

// EmitTick доставляет периодический тик с текущим счётчиком
func (b *EventBridge) EmitTick(counter uint64) {
	for _, fn := range b.tickHandlers {
		fn(counter)
	}
}

// EmitJobInitiated доставляет уведомление о запуске задачи
func (b *EventBridge) EmitJobInitiated(job *Job) {
	for _, fn := range b.initHandlers {
		fn(job)
	}
}

// EmitJobCompleted доставляет уведомление о завершении задачи
func (b *EventBridge) EmitJobCompleted(job *Job) {
	for _, fn := range b.completeHandlers {
		fn(job)
	}
}

// EmitWorldState доставляет уведомление о переходе состояния мира
func (b *EventBridge) EmitWorldState(kind WorldStateKind) {
	for _, fn := range b.stateHandlers {
		fn(kind)
	}
}
