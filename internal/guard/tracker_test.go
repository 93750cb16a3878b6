package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/channel-guard/internal/vec"
	"github.com/annel0/channel-guard/internal/world"
)

// channelGrid строит карту и размечает перечисленные тайлы канальной выемкой
func channelGrid(t *testing.T, sizeX, sizeY, sizeZ int, channels ...vec.Vec3) *world.MapGrid {
	t.Helper()
	grid := world.NewMapGrid(sizeX, sizeY, sizeZ)
	for _, pos := range channels {
		grid.SetDesignation(pos, world.DesignationChannel)
	}
	return grid
}

func insertAll(ct *ComponentTracker, grid *world.MapGrid, positions ...vec.Vec3) {
	for _, pos := range positions {
		ct.Insert(pos, grid.ChunkAt(pos))
	}
}

func TestTracker_InsertIdempotent(t *testing.T) {
	pos := vec.Vec3{X: 3, Y: 3, Z: 5}
	grid := channelGrid(t, 32, 32, 10, pos)
	ct := NewComponentTracker(grid)

	ct.Insert(pos, grid.ChunkAt(pos))
	ct.Insert(pos, grid.ChunkAt(pos))
	ct.Insert(pos, grid.ChunkAt(pos))

	assert.Equal(t, 1, ct.TileCount(), "Повторная вставка не должна менять состояние")
	assert.Equal(t, 1, ct.GroupCount(), "Должна остаться одна группа")

	g, ok := ct.GroupAt(pos)
	require.True(t, ok)
	assert.Equal(t, 1, g.Len())
}

func TestTracker_NeighboursShareGroup(t *testing.T) {
	// Диагональные соседи тоже связаны (8-связность)
	a := vec.Vec3{X: 4, Y: 4, Z: 2}
	b := vec.Vec3{X: 5, Y: 5, Z: 2}
	grid := channelGrid(t, 32, 32, 10, a, b)
	ct := NewComponentTracker(grid)

	insertAll(ct, grid, a, b)

	ga, ok := ct.GroupAt(a)
	require.True(t, ok)
	gb, ok := ct.GroupAt(b)
	require.True(t, ok)

	assert.Same(t, ga, gb, "8-соседи должны попасть в одну группу")
	assert.Equal(t, 2, ga.Len())
	assert.Equal(t, 1, ct.GroupCount())
}

func TestTracker_DifferentLayersStaySeparate(t *testing.T) {
	// Вертикальное соседство не связывает: группы живут внутри слоя
	a := vec.Vec3{X: 4, Y: 4, Z: 2}
	b := vec.Vec3{X: 4, Y: 4, Z: 3}
	grid := channelGrid(t, 32, 32, 10, a, b)
	ct := NewComponentTracker(grid)

	insertAll(ct, grid, a, b)

	ga, _ := ct.GroupAt(a)
	gb, _ := ct.GroupAt(b)
	assert.NotSame(t, ga, gb, "Тайлы разных слоёв не должны делить группу")
	assert.Equal(t, 2, ct.GroupCount())
}

func TestTracker_BridgeInsertMergesGroups(t *testing.T) {
	// (0,0) и (2,0) раздельны, пока вставка (1,0) не склеит их в одну группу
	left := vec.Vec3{X: 0, Y: 0, Z: 4}
	right := vec.Vec3{X: 2, Y: 0, Z: 4}
	mid := vec.Vec3{X: 1, Y: 0, Z: 4}
	grid := channelGrid(t, 32, 32, 10, left, right, mid)
	ct := NewComponentTracker(grid)

	insertAll(ct, grid, left, right)
	assert.Equal(t, 2, ct.GroupCount(), "До мостика группы раздельны")

	ct.Insert(mid, grid.ChunkAt(mid))

	assert.Equal(t, 1, ct.GroupCount(), "Мостик должен склеить группы")
	assert.Equal(t, 3, ct.TileCount())

	g, ok := ct.GroupAt(mid)
	require.True(t, ok)
	assert.Equal(t, 3, g.Len())
	assert.True(t, g.Has(left))
	assert.True(t, g.Has(right))

	// Индекс всех членов должен указывать на принимающую группу
	for _, pos := range []vec.Vec3{left, right, mid} {
		gp, ok := ct.GroupAt(pos)
		require.True(t, ok, "Тайл %v должен остаться проиндексированным", pos)
		assert.Same(t, g, gp)
	}

	assert.Equal(t, 1, ct.FreeSlotCount(), "Освободившийся слот возвращается в пул")
}

func TestTracker_InsertMergesThreeGroups(t *testing.T) {
	// Вставка одного тайла может объединить три группы разом
	a := vec.Vec3{X: 4, Y: 4, Z: 1}
	b := vec.Vec3{X: 6, Y: 4, Z: 1}
	c := vec.Vec3{X: 5, Y: 6, Z: 1}
	center := vec.Vec3{X: 5, Y: 5, Z: 1}
	grid := channelGrid(t, 32, 32, 10, a, b, c, center)
	ct := NewComponentTracker(grid)

	insertAll(ct, grid, a, b, c)
	require.Equal(t, 3, ct.GroupCount())

	ct.Insert(center, grid.ChunkAt(center))

	assert.Equal(t, 1, ct.GroupCount())
	assert.Equal(t, 4, ct.TileCount(), "Число тайлов сохраняется при слиянии")

	g, _ := ct.GroupAt(center)
	assert.ElementsMatch(t, []vec.Vec3{a, b, c, center}, g.Positions())
}

func TestTracker_FreeSlotReuse(t *testing.T) {
	left := vec.Vec3{X: 0, Y: 0, Z: 4}
	right := vec.Vec3{X: 2, Y: 0, Z: 4}
	mid := vec.Vec3{X: 1, Y: 0, Z: 4}
	lone := vec.Vec3{X: 20, Y: 20, Z: 4}
	grid := channelGrid(t, 32, 32, 10, left, right, mid, lone)
	ct := NewComponentTracker(grid)

	insertAll(ct, grid, left, right, mid)
	require.Equal(t, 1, ct.FreeSlotCount())

	// Новая изолированная группа должна занять освобождённый слот,
	// а не расширять арену
	ct.Insert(lone, grid.ChunkAt(lone))
	assert.Equal(t, 0, ct.FreeSlotCount())
	assert.Equal(t, 2, ct.GroupCount())
}

func TestTracker_RemoveLeavesEmptyGroup(t *testing.T) {
	pos := vec.Vec3{X: 3, Y: 3, Z: 5}
	grid := channelGrid(t, 32, 32, 10, pos)
	ct := NewComponentTracker(grid)
	ct.Insert(pos, grid.ChunkAt(pos))

	ct.Remove(pos)

	_, ok := ct.GroupAt(pos)
	assert.False(t, ok, "Удалённый тайл не должен находиться через индекс")
	assert.Equal(t, 0, ct.TileCount())
	assert.Equal(t, 0, ct.GroupCount(), "Пустая группа не считается")

	// Повторное удаление — no-op
	ct.Remove(pos)
	assert.Equal(t, 0, ct.TileCount())
}

func TestTracker_RebuildPartition(t *testing.T) {
	// После перестройки каждый канальный тайл принадлежит ровно одной группе,
	// и группы согласованы с индексом
	tiles := []vec.Vec3{
		{X: 0, Y: 0, Z: 3}, {X: 1, Y: 0, Z: 3}, {X: 2, Y: 1, Z: 3}, // Одна компонента
		{X: 10, Y: 10, Z: 3},                     // Изолированный тайл
		{X: 15, Y: 0, Z: 3}, {X: 16, Y: 0, Z: 3}, // Компонента через границу чанков
		{X: 5, Y: 5, Z: 7},
	}
	grid := channelGrid(t, 32, 32, 10, tiles...)
	// Обычная выемка не должна попадать в трекер
	grid.SetDesignation(vec.Vec3{X: 8, Y: 8, Z: 3}, world.DesignationDig)

	ct := NewComponentTracker(grid)
	ct.Rebuild()

	assert.Equal(t, len(tiles), ct.TileCount())
	assert.Equal(t, 4, ct.GroupCount())

	// Каждый тайл находится ровно в той группе, на которую указывает индекс
	seen := make(map[vec.Vec3]bool)
	for _, pos := range ct.TrackedTiles() {
		g, ok := ct.GroupAt(pos)
		require.True(t, ok)
		assert.True(t, g.Has(pos), "Группа из индекса должна содержать тайл %v", pos)
		assert.False(t, seen[pos], "Тайл %v встретился дважды", pos)
		seen[pos] = true
	}

	_, ok := ct.GroupAt(vec.Vec3{X: 8, Y: 8, Z: 3})
	assert.False(t, ok, "Обычная выемка не отслеживается")

	// Повторная перестройка даёт ту же разбивку
	ct.Rebuild()
	assert.Equal(t, len(tiles), ct.TileCount())
	assert.Equal(t, 4, ct.GroupCount())
}

func TestTracker_RebuildCrossChunkComponent(t *testing.T) {
	// Тайлы (15,0) и (16,0) лежат в соседних чанках, но связаны
	a := vec.Vec3{X: 15, Y: 7, Z: 2}
	b := vec.Vec3{X: 16, Y: 7, Z: 2}
	grid := channelGrid(t, 48, 48, 5, a, b)

	ct := NewComponentTracker(grid)
	ct.Rebuild()

	ga, ok := ct.GroupAt(a)
	require.True(t, ok)
	gb, ok := ct.GroupAt(b)
	require.True(t, ok)
	assert.Same(t, ga, gb, "Компонента через границу чанков должна быть единой")
}
