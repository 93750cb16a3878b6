package guard

import (
	"fmt"

	"github.com/annel0/channel-guard/internal/vec"
	"github.com/annel0/channel-guard/internal/world"
)

// Group — изменяемое множество тайлов одного слоя, транзитивно связанных
// по 8 соседям и назначенных к выемке каналом. Вместе с тайлом хранится
// невладеющая ссылка на его чанк, чтобы при оценке не искать чанк заново.
type Group struct {
	tiles map[vec.Vec3]*world.Chunk
}

func newGroup() *Group {
	return &Group{tiles: make(map[vec.Vec3]*world.Chunk)}
}

// Len возвращает число тайлов в группе
func (g *Group) Len() int {
	return len(g.tiles)
}

// Has сообщает, входит ли тайл в группу
func (g *Group) Has(pos vec.Vec3) bool {
	_, ok := g.tiles[pos]
	return ok
}

// Positions возвращает позиции всех членов группы
func (g *Group) Positions() []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(g.tiles))
	for pos := range g.tiles {
		out = append(out, pos)
	}
	return out
}

// ComponentTracker инкрементально поддерживает максимальные 8-связные
// группы тайлов одного слоя, назначенных к выемке каналом.
//
// Хранение — арена слотов групп с переиспользованием: плотный массив
// слотов, множество свободных индексов и отображение позиция → слот.
// Инвариант: каждый канальный тайл принадлежит ровно одной группе,
// группы одного слоя не пересекаются.
type ComponentTracker struct {
	grid   world.Grid
	groups []*Group         // Арена слотов групп
	free   map[int]struct{} // Освобождённые слоты, переиспользуются до роста арены
	index  map[vec.Vec3]int // Тайл -> слот группы
}

// NewComponentTracker создаёт пустой трекер над указанной картой
func NewComponentTracker(grid world.Grid) *ComponentTracker {
	return &ComponentTracker{
		grid:  grid,
		free:  make(map[int]struct{}),
		index: make(map[vec.Vec3]int),
	}
}

// Reset очищает арену, пул свободных слотов и индекс
func (ct *ComponentTracker) Reset() {
	ct.groups = ct.groups[:0]
	ct.free = make(map[int]struct{})
	ct.index = make(map[vec.Vec3]int)
}

// mustGroup возвращает группу по слоту. Расхождение индекса и арены —
// ошибка протокола слияния, восстановление невозможно.
func (ct *ComponentTracker) mustGroup(slot int) *Group {
	if slot < 0 || slot >= len(ct.groups) || ct.groups[slot] == nil {
		panic(fmt.Sprintf("guard: индекс групп ссылается на несуществующий слот %d (арена %d)", slot, len(ct.groups)))
	}
	return ct.groups[slot]
}

// GroupAt возвращает группу, содержащую тайл pos.
// Промах индекса — нормальный случай: тайл не является активным
// канальным назначением.
func (ct *ComponentTracker) GroupAt(pos vec.Vec3) (*Group, bool) {
	slot, ok := ct.index[pos]
	if !ok {
		return nil, false
	}
	return ct.mustGroup(slot), true
}

// Insert добавляет канальный тайл в трекер. Идемпотентен: уже
// проиндексированный тайл не изменяет состояния.
//
// Все проиндексированные соседи тайла сливаются в одну группу: первый
// найденный слот становится принимающим, остальные слоты полностью
// переносятся в него и возвращаются в пул свободных. Одна вставка может
// склеить три и более ранее раздельных групп.
func (ct *ComponentTracker) Insert(pos vec.Vec3, chunk *world.Chunk) {
	if _, ok := ct.index[pos]; ok {
		return
	}

	host := -1
	for _, n := range pos.Neighbours8() {
		slot, ok := ct.index[n]
		if !ok {
			continue
		}
		if host == -1 {
			host = slot
			continue
		}
		if slot == host {
			continue
		}
		ct.merge(host, slot)
	}

	if host == -1 {
		host = ct.allocSlot()
	}

	hg := ct.mustGroup(host)
	hg.tiles[pos] = chunk

	// Обновить индекс всех членов принимающей группы: после слияний
	// перенесённые тайлы всё ещё ссылаются на свои старые слоты.
	for p := range hg.tiles {
		ct.index[p] = host
	}
}

// merge переносит все тайлы группы слота from в группу слота into,
// очищает from и возвращает его в пул свободных. Индекс перенесённых
// тайлов обновляет вызывающая сторона.
func (ct *ComponentTracker) merge(into, from int) {
	dst := ct.mustGroup(into)
	src := ct.mustGroup(from)
	for pos, chunk := range src.tiles {
		dst.tiles[pos] = chunk
	}
	src.tiles = make(map[vec.Vec3]*world.Chunk)
	ct.free[from] = struct{}{}
}

// allocSlot выдаёт слот группы, предпочитая освобождённые перед ростом
// арены. Из пула берётся наименьший индекс, чтобы дампы были стабильны.
func (ct *ComponentTracker) allocSlot() int {
	if len(ct.free) > 0 {
		slot := -1
		for id := range ct.free {
			if slot == -1 || id < slot {
				slot = id
			}
		}
		delete(ct.free, slot)
		ct.groups[slot] = newGroup()
		return slot
	}
	ct.groups = append(ct.groups, newGroup())
	return len(ct.groups) - 1
}

// Remove исключает тайл из его группы и из индекса. Используется на пути
// завершения задачи: законченный тайл не должен участвовать в оценке
// готовности. Опустевшая группа остаётся в арене — пустая группа не
// блокирует готовность нижележащих.
func (ct *ComponentTracker) Remove(pos vec.Vec3) {
	slot, ok := ct.index[pos]
	if !ok {
		return
	}
	g := ct.mustGroup(slot)
	delete(g.tiles, pos)
	delete(ct.index, pos)
}

// Rebuild отбрасывает всё состояние и заново перечисляет карту,
// вставляя каждый тайл с канальным назначением. Корректность важнее
// инкрементального учёта: пересканы нечасты, компоненты малы.
func (ct *ComponentTracker) Rebuild() {
	ct.Reset()

	sizeX, sizeY, sizeZ := ct.grid.Size()
	for z := 0; z < sizeZ; z++ {
		for cx := 0; cx*world.ChunkSize < sizeX; cx++ {
			for cy := 0; cy*world.ChunkSize < sizeY; cy++ {
				origin := vec.Vec3{X: cx * world.ChunkSize, Y: cy * world.ChunkSize, Z: z}
				chunk := ct.grid.ChunkAt(origin)
				if chunk == nil {
					continue
				}
				ct.insertChunkChannels(chunk, origin, sizeX, sizeY)
			}
		}
	}
}

// insertChunkChannels вставляет все канальные тайлы одного чанка,
// отсекая тайлы за пределами карты.
func (ct *ComponentTracker) insertChunkChannels(chunk *world.Chunk, origin vec.Vec3, sizeX, sizeY int) {
	for lx := 0; lx < world.ChunkSize; lx++ {
		for ly := 0; ly < world.ChunkSize; ly++ {
			gx, gy := origin.X+lx, origin.Y+ly
			if gx >= sizeX || gy >= sizeY {
				continue
			}
			if chunk.Designations[lx][ly] != world.DesignationChannel {
				continue
			}
			ct.Insert(vec.Vec3{X: gx, Y: gy, Z: origin.Z}, chunk)
		}
	}
}

// TrackedTiles возвращает позиции всех проиндексированных тайлов
func (ct *ComponentTracker) TrackedTiles() []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(ct.index))
	for pos := range ct.index {
		out = append(out, pos)
	}
	return out
}

// TileCount возвращает общее число отслеживаемых тайлов
func (ct *ComponentTracker) TileCount() int {
	return len(ct.index)
}

// GroupCount возвращает число непустых групп
func (ct *ComponentTracker) GroupCount() int {
	n := 0
	for slot, g := range ct.groups {
		if _, freed := ct.free[slot]; freed {
			continue
		}
		if g != nil && g.Len() > 0 {
			n++
		}
	}
	return n
}

// FreeSlotCount возвращает размер пула свободных слотов
func (ct *ComponentTracker) FreeSlotCount() int {
	return len(ct.free)
}
