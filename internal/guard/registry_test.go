package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/channel-guard/internal/sim"
	"github.com/annel0/channel-guard/internal/vec"
)

func TestRegistry_RebuildFiltersExcavation(t *testing.T) {
	jobs := sim.NewJobList()
	dig := sim.NewJob(sim.JobDig, vec.Vec3{X: 1, Y: 1, Z: 2})
	channel := sim.NewJob(sim.JobChannel, vec.Vec3{X: 2, Y: 2, Z: 3})
	haul := sim.NewJob(sim.JobHaul, vec.Vec3{X: 3, Y: 3, Z: 2})
	jobs.Add(dig)
	jobs.Add(channel)
	jobs.Add(haul)

	r := NewDigJobRegistry()
	r.Rebuild(jobs)

	assert.Equal(t, 2, r.Len(), "Переноска не индексируется")
	assert.Same(t, dig, r.Find(dig.Pos))
	assert.Same(t, channel, r.Find(channel.Pos))
	assert.Nil(t, r.Find(haul.Pos))
}

func TestRegistry_AtLayer(t *testing.T) {
	jobs := sim.NewJobList()
	a := sim.NewJob(sim.JobDig, vec.Vec3{X: 1, Y: 1, Z: 2})
	b := sim.NewJob(sim.JobChannel, vec.Vec3{X: 5, Y: 5, Z: 2})
	c := sim.NewJob(sim.JobChannel, vec.Vec3{X: 5, Y: 5, Z: 7})
	jobs.Add(a)
	jobs.Add(b)
	jobs.Add(c)

	r := NewDigJobRegistry()
	r.Rebuild(jobs)

	assert.ElementsMatch(t, []*sim.Job{a, b}, r.AtLayer(2))
	assert.ElementsMatch(t, []*sim.Job{c}, r.AtLayer(7))
	assert.Empty(t, r.AtLayer(0))
}

func TestRegistry_Remove(t *testing.T) {
	jobs := sim.NewJobList()
	a := sim.NewJob(sim.JobDig, vec.Vec3{X: 1, Y: 1, Z: 2})
	b := sim.NewJob(sim.JobChannel, vec.Vec3{X: 2, Y: 1, Z: 2})
	jobs.Add(a)
	jobs.Add(b)

	r := NewDigJobRegistry()
	r.Rebuild(jobs)
	require.Equal(t, 2, r.Len())

	r.Remove(a)
	assert.Nil(t, r.Find(a.Pos))
	assert.ElementsMatch(t, []*sim.Job{b}, r.AtLayer(2))

	// Повторное удаление и nil — no-op
	r.Remove(a)
	r.Remove(nil)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RebuildDropsStaleEntries(t *testing.T) {
	jobs := sim.NewJobList()
	a := sim.NewJob(sim.JobDig, vec.Vec3{X: 1, Y: 1, Z: 2})
	jobs.Add(a)

	r := NewDigJobRegistry()
	r.Rebuild(jobs)
	require.Equal(t, 1, r.Len())

	jobs.Remove(a)
	r.Rebuild(jobs)
	assert.Equal(t, 0, r.Len(), "Перестройка отбрасывает устаревшие ссылки")
}
