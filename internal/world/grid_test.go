package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/channel-guard/internal/vec"
)

func TestMapGrid_LazyChunks(t *testing.T) {
	g := NewMapGrid(64, 64, 10)

	pos := vec.Vec3{X: 20, Y: 35, Z: 4}
	assert.Nil(t, g.ChunkAt(pos), "Чанк не создаётся при чтении")

	g.SetDesignation(pos, DesignationDig)
	chunk := g.ChunkAt(pos)
	require.NotNil(t, chunk)
	assert.Equal(t, vec.Vec3{X: 1, Y: 2, Z: 4}, chunk.Coords)
	assert.Equal(t, DesignationDig, g.DesignationAt(pos))
}

func TestMapGrid_OutOfBounds(t *testing.T) {
	g := NewMapGrid(32, 32, 8)

	outside := []vec.Vec3{
		{X: -1, Y: 0, Z: 0},
		{X: 0, Y: 32, Z: 0},
		{X: 0, Y: 0, Z: 8},
		{X: 0, Y: 0, Z: -1},
	}
	for _, pos := range outside {
		assert.False(t, g.InBounds(pos), "%v вне карты", pos)
		assert.Nil(t, g.ChunkAt(pos))
		assert.Nil(t, g.EnsureChunk(pos))

		// Запись вне карты молча игнорируется
		g.SetDesignation(pos, DesignationChannel)
		assert.Equal(t, DesignationNone, g.DesignationAt(pos))
		g.SetUnsafe(pos, true)
		assert.False(t, g.UnsafeAt(pos))
	}
}

func TestMapGrid_UnsafeRoundTrip(t *testing.T) {
	g := NewMapGrid(32, 32, 8)
	pos := vec.Vec3{X: 17, Y: 3, Z: 2}

	assert.False(t, g.UnsafeAt(pos))
	g.SetUnsafe(pos, true)
	assert.True(t, g.UnsafeAt(pos))
	g.SetUnsafe(pos, false)
	assert.False(t, g.UnsafeAt(pos))
}

func TestMapGrid_EachDesignation(t *testing.T) {
	g := NewMapGrid(48, 48, 8)
	dig := vec.Vec3{X: 1, Y: 1, Z: 2}
	channel := vec.Vec3{X: 40, Y: 40, Z: 5}
	g.SetDesignation(dig, DesignationDig)
	g.SetDesignation(channel, DesignationChannel)
	// Снятое назначение не перечисляется
	cleared := vec.Vec3{X: 2, Y: 2, Z: 2}
	g.SetDesignation(cleared, DesignationDig)
	g.SetDesignation(cleared, DesignationNone)

	found := make(map[vec.Vec3]Designation)
	g.EachDesignation(func(pos vec.Vec3, d Designation) bool {
		found[pos] = d
		return true
	})

	assert.Equal(t, map[vec.Vec3]Designation{
		dig:     DesignationDig,
		channel: DesignationChannel,
	}, found)

	// Возврат false прерывает обход
	count := 0
	g.EachDesignation(func(pos vec.Vec3, d Designation) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}
