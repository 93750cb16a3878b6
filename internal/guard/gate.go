package guard

import (
	"github.com/annel0/channel-guard/internal/vec"
	"github.com/annel0/channel-guard/internal/world"
)

// SafetyGate решает, может ли выемка тайла продолжаться, по готовности
// его группы и порогу пользовательского приоритета, и приводит состояние
// тайла в соответствие решению.
type SafetyGate struct {
	grid      world.Grid
	tracker   *ComponentTracker
	registry  *DigJobRegistry
	canceller *JobCanceller

	// priorityThreshold — зарезервированная полоса приоритетов: тайлы с
	// приоритетом не ниже порога пользователь исключил из автоматики.
	priorityThreshold int32

	metrics   *Metrics
	publisher *Publisher
}

// NewSafetyGate создаёт гейт над уже собранными индексами
func NewSafetyGate(grid world.Grid, tracker *ComponentTracker, registry *DigJobRegistry, canceller *JobCanceller, priorityThreshold int32, metrics *Metrics, publisher *Publisher) *SafetyGate {
	return &SafetyGate{
		grid:              grid,
		tracker:           tracker,
		registry:          registry,
		canceller:         canceller,
		priorityThreshold: priorityThreshold,
		metrics:           metrics,
		publisher:         publisher,
	}
}

// Evaluate оценивает безопасность одного тайла.
//
// Тайл вне какой-либо группы — не активное канальное назначение, no-op.
// Тайл с приоритетом не ниже порога не трогается независимо от готовности.
// Тайлу готовой группы снимается флаг "небезопасно", и чанк помечается
// как имеющий активные назначения. В неготовой группе помечается и теряет
// задачу только тайл, над которым действительно висит незавершённый канал;
// остальные члены остаются как есть до готовности всей группы. Само
// назначение остаётся нетронутым, чтобы работа могла быть предложена позже.
func (sg *SafetyGate) Evaluate(pos vec.Vec3) {
	group, ok := sg.tracker.GroupAt(pos)
	if !ok {
		return
	}
	chunk := sg.grid.ChunkAt(pos)
	if chunk == nil {
		return
	}
	local := pos.LocalInChunk()

	if p, has := chunk.PriorityAt(local); has && p >= sg.priorityThreshold {
		return
	}

	if sg.ready(group) {
		if chunk.UnsafeAt(local) {
			sg.metrics.IncCleared()
			sg.publisher.TileCleared(pos)
		}
		chunk.SetUnsafe(local, false)
		chunk.Designated = true
		return
	}

	if !sg.blocked(pos) {
		return
	}

	if !chunk.UnsafeAt(local) {
		sg.metrics.IncFlagged()
		sg.publisher.TileFlagged(pos)
	}
	chunk.SetUnsafe(local, true)
	if job := sg.registry.Find(pos); job != nil {
		sg.canceller.Cancel(job)
	}
}

// blocked сообщает, висит ли непосредственно над тайлом незавершённый канал
func (sg *SafetyGate) blocked(pos vec.Vec3) bool {
	above := pos.Above()
	if _, _, sizeZ := sg.grid.Size(); above.Z >= sizeZ {
		return false
	}
	og, ok := sg.tracker.GroupAt(above)
	return ok && og.Len() > 0
}

// ready сообщает готовность группы: для каждого члена тайл непосредственно
// на слой выше либо не принадлежит никакой группе, либо принадлежит пустой.
// Верхний слой карты готов тривиально — над ним ничего нет.
func (sg *SafetyGate) ready(group *Group) bool {
	_, _, sizeZ := sg.grid.Size()
	for pos := range group.tiles {
		above := pos.Above()
		if above.Z >= sizeZ {
			continue
		}
		if og, ok := sg.tracker.GroupAt(above); ok && og.Len() > 0 {
			return false
		}
	}
	return true
}
