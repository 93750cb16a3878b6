package world

import (
	"github.com/annel0/channel-guard/internal/vec"
)

// Grid — адаптер воксельной карты, предоставляемый симуляцией.
// Ядро безопасности никогда не хранит глобальных ссылок на хранилище карты:
// размеры запрашиваются один раз за перескан, чанки — через ChunkAt.
type Grid interface {
	// Size возвращает размеры карты в тайлах по осям X, Y, Z
	Size() (x, y, z int)

	// ChunkAt возвращает чанк, содержащий тайл pos, либо nil,
	// если позиция вне карты или чанк отсутствует
	ChunkAt(pos vec.Vec3) *Chunk
}

// MapGrid — эталонная реализация Grid в памяти.
// Используется хостом симуляции и тестами; чанки создаются лениво при записи.
type MapGrid struct {
	sizeX, sizeY, sizeZ int
	chunks              map[vec.Vec3]*Chunk
}

// NewMapGrid создаёт пустую карту указанных размеров (в тайлах)
func NewMapGrid(x, y, z int) *MapGrid {
	return &MapGrid{
		sizeX:  x,
		sizeY:  y,
		sizeZ:  z,
		chunks: make(map[vec.Vec3]*Chunk),
	}
}

// Size возвращает размеры карты в тайлах
func (g *MapGrid) Size() (x, y, z int) {
	return g.sizeX, g.sizeY, g.sizeZ
}

// InBounds проверяет, что позиция находится внутри карты
func (g *MapGrid) InBounds(pos vec.Vec3) bool {
	return pos.X >= 0 && pos.X < g.sizeX &&
		pos.Y >= 0 && pos.Y < g.sizeY &&
		pos.Z >= 0 && pos.Z < g.sizeZ
}

// ChunkAt возвращает чанк, содержащий тайл pos, либо nil вне карты.
// Чанк не создаётся: отсутствие чанка означает "ничего не назначено".
func (g *MapGrid) ChunkAt(pos vec.Vec3) *Chunk {
	if !g.InBounds(pos) {
		return nil
	}
	return g.chunks[pos.ToChunkCoords()]
}

// EnsureChunk возвращает чанк для тайла pos, создавая его при необходимости.
// Возвращает nil для позиций вне карты.
func (g *MapGrid) EnsureChunk(pos vec.Vec3) *Chunk {
	if !g.InBounds(pos) {
		return nil
	}
	coords := pos.ToChunkCoords()
	chunk, ok := g.chunks[coords]
	if !ok {
		chunk = NewChunk(coords)
		g.chunks[coords] = chunk
	}
	return chunk
}

// SetDesignation устанавливает вид выемки тайла по глобальной позиции
func (g *MapGrid) SetDesignation(pos vec.Vec3, d Designation) {
	if chunk := g.EnsureChunk(pos); chunk != nil {
		chunk.SetDesignation(pos.LocalInChunk(), d)
	}
}

// DesignationAt возвращает вид выемки тайла; DesignationNone вне карты
func (g *MapGrid) DesignationAt(pos vec.Vec3) Designation {
	chunk := g.ChunkAt(pos)
	if chunk == nil {
		return DesignationNone
	}
	return chunk.DesignationAt(pos.LocalInChunk())
}

// SetUnsafe выставляет или снимает флаг "небезопасно" по глобальной позиции
func (g *MapGrid) SetUnsafe(pos vec.Vec3, unsafe bool) {
	if chunk := g.EnsureChunk(pos); chunk != nil {
		chunk.SetUnsafe(pos.LocalInChunk(), unsafe)
	}
}

// UnsafeAt сообщает, отмечен ли тайл небезопасным; false вне карты
func (g *MapGrid) UnsafeAt(pos vec.Vec3) bool {
	chunk := g.ChunkAt(pos)
	if chunk == nil {
		return false
	}
	return chunk.UnsafeAt(pos.LocalInChunk())
}

// SetPriority записывает приоритет тайла по глобальной позиции
func (g *MapGrid) SetPriority(pos vec.Vec3, priority int32) {
	if chunk := g.EnsureChunk(pos); chunk != nil {
		chunk.SetPriority(pos.LocalInChunk(), priority)
	}
}

// EachDesignation обходит все активные назначения карты.
// Возврат false из fn прерывает обход.
func (g *MapGrid) EachDesignation(fn func(pos vec.Vec3, d Designation) bool) {
	for coords, chunk := range g.chunks {
		for lx := 0; lx < ChunkSize; lx++ {
			for ly := 0; ly < ChunkSize; ly++ {
				d := chunk.Designations[lx][ly]
				if !d.IsActive() {
					continue
				}
				pos := vec.Vec3{
					X: coords.X*ChunkSize + lx,
					Y: coords.Y*ChunkSize + ly,
					Z: coords.Z,
				}
				if !g.InBounds(pos) {
					continue
				}
				if !fn(pos, d) {
					return
				}
			}
		}
	}
}
