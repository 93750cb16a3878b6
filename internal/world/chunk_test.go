package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/channel-guard/internal/vec"
)

func TestChunk_DesignationSetsLayerFlag(t *testing.T) {
	c := NewChunk(vec.Vec3{X: 0, Y: 0, Z: 3})
	assert.False(t, c.Designated, "Новый чанк без активных назначений")

	local := vec.Vec2{X: 5, Y: 7}
	c.SetDesignation(local, DesignationChannel)

	assert.Equal(t, DesignationChannel, c.DesignationAt(local))
	assert.True(t, c.Designated, "Активное назначение поднимает флаг слоя")

	// Снятие назначения флаг слоя не сбрасывает: этим управляет гейт
	c.SetDesignation(local, DesignationNone)
	assert.True(t, c.Designated)
}

func TestChunk_UnsafeFlag(t *testing.T) {
	c := NewChunk(vec.Vec3{})
	local := vec.Vec2{X: 1, Y: 2}

	assert.False(t, c.UnsafeAt(local))
	c.SetUnsafe(local, true)
	assert.True(t, c.UnsafeAt(local))
	assert.False(t, c.UnsafeAt(vec.Vec2{X: 2, Y: 1}), "Флаг ставится только на свой тайл")

	c.SetUnsafe(local, false)
	assert.False(t, c.UnsafeAt(local))
}

func TestChunk_PriorityOverlays(t *testing.T) {
	c := NewChunk(vec.Vec3{})
	local := vec.Vec2{X: 3, Y: 3}

	_, ok := c.PriorityAt(local)
	assert.False(t, ok, "Без оверлеев приоритета нет")

	c.SetPriority(local, 6500)
	p, ok := c.PriorityAt(local)
	assert.True(t, ok)
	assert.Equal(t, int32(6500), p)

	// Первый ненулевой оверлей побеждает
	second := &PriorityOverlay{}
	second.Priorities[local.X][local.Y] = 100
	c.AddOverlay(second)
	p, _ = c.PriorityAt(local)
	assert.Equal(t, int32(6500), p)

	// Нулевое значение в первом оверлее открывает второй
	other := vec.Vec2{X: 9, Y: 9}
	second.Priorities[other.X][other.Y] = 42
	p, ok = c.PriorityAt(other)
	assert.True(t, ok)
	assert.Equal(t, int32(42), p)
}

func TestDesignation_IsActive(t *testing.T) {
	assert.False(t, DesignationNone.IsActive())
	assert.True(t, DesignationDig.IsActive())
	assert.True(t, DesignationChannel.IsActive())
}
