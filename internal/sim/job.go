package sim

import (
	"github.com/google/uuid"

	"github.com/annel0/channel-guard/internal/vec"
)

// JobKind — вид задачи симуляции.
type JobKind uint8

const (
	JobDig     JobKind = iota // Обычная выемка
	JobChannel                // Выемка каналом
	JobHaul                   // Переноска; для ядра безопасности не интересна
)

// IsExcavation сообщает, относится ли вид задачи к выемке
func (k JobKind) IsExcavation() bool {
	return k == JobDig || k == JobChannel
}

// String возвращает строковое представление для логов и дампов
func (k JobKind) String() string {
	switch k {
	case JobDig:
		return "dig"
	case JobChannel:
		return "channel"
	case JobHaul:
		return "haul"
	default:
		return "unknown"
	}
}

// Job — активная задача симуляции, привязанная ровно к одному тайлу.
// Задачами владеет симуляция: ядро хранит только временные ссылки,
// действительные в пределах текущего перескана или события.
type Job struct {
	ID   uuid.UUID
	Kind JobKind
	Pos  vec.Vec3
}

// NewJob создаёт задачу указанного вида на тайле pos
func NewJob(kind JobKind, pos vec.Vec3) *Job {
	return &Job{
		ID:   uuid.New(),
		Kind: kind,
		Pos:  pos,
	}
}
