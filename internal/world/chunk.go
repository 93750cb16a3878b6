package world

import (
	"github.com/annel0/channel-guard/internal/vec"
)

// ChunkSize — размер стороны чанка в тайлах
const ChunkSize = 16

// PriorityOverlay хранит числовые приоритеты тайлов чанка.
// Нулевое значение означает "приоритет не задан" (тайл не защищён).
type PriorityOverlay struct {
	Priorities [ChunkSize][ChunkSize]int32
}

// Chunk представляет слэб мира размером 16x16 тайлов на одном слое глубины.
// Владеет массивами designation/occupancy, флагом слоя "есть активные
// назначения" и нулём или более оверлеями приоритетов.
//
// Доступ к чанку не синхронизирован: по контракту хоста все колбэки ядра
// выполняются строго последовательно (single-writer).
type Chunk struct {
	Coords vec.Vec3 // Координаты чанка: X,Y — индекс слэба, Z — слой глубины

	Designations [ChunkSize][ChunkSize]Designation // Запрошенный вид выемки по тайлам
	Occupancy    [ChunkSize][ChunkSize]Occupancy   // Флаги занятости по тайлам

	// Designated — флаг слоя "есть активные назначения": разрешает обычное
	// распределение работы по чанку.
	Designated bool

	overlays []*PriorityOverlay
}

// NewChunk создаёт пустой чанк с указанными координатами
func NewChunk(coords vec.Vec3) *Chunk {
	return &Chunk{Coords: coords}
}

// DesignationAt возвращает вид выемки тайла по локальным координатам
func (c *Chunk) DesignationAt(local vec.Vec2) Designation {
	return c.Designations[local.X][local.Y]
}

// SetDesignation устанавливает вид выемки тайла по локальным координатам
func (c *Chunk) SetDesignation(local vec.Vec2, d Designation) {
	c.Designations[local.X][local.Y] = d
	if d.IsActive() {
		c.Designated = true
	}
}

// UnsafeAt сообщает, отмечен ли тайл небезопасным
func (c *Chunk) UnsafeAt(local vec.Vec2) bool {
	return c.Occupancy[local.X][local.Y].Unsafe()
}

// SetUnsafe выставляет или снимает флаг "небезопасно" для тайла
func (c *Chunk) SetUnsafe(local vec.Vec2, unsafe bool) {
	if unsafe {
		c.Occupancy[local.X][local.Y] |= OccUnsafe
	} else {
		c.Occupancy[local.X][local.Y] &^= OccUnsafe
	}
}

// AddOverlay добавляет оверлей приоритетов к чанку
func (c *Chunk) AddOverlay(o *PriorityOverlay) {
	c.overlays = append(c.overlays, o)
}

// PriorityAt возвращает приоритет тайла и признак его наличия.
// Просматриваются все оверлеи; первое ненулевое значение побеждает.
// Отсутствие значения означает, что тайл не защищён пользователем.
func (c *Chunk) PriorityAt(local vec.Vec2) (int32, bool) {
	for _, o := range c.overlays {
		if p := o.Priorities[local.X][local.Y]; p != 0 {
			return p, true
		}
	}
	return 0, false
}

// SetPriority записывает приоритет тайла, создавая оверлей при необходимости
func (c *Chunk) SetPriority(local vec.Vec2, priority int32) {
	if len(c.overlays) == 0 {
		c.AddOverlay(&PriorityOverlay{})
	}
	c.overlays[0].Priorities[local.X][local.Y] = priority
}
