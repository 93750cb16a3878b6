package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/channel-guard/internal/guard"
	"github.com/annel0/channel-guard/internal/sim"
	"github.com/annel0/channel-guard/internal/vec"
	"github.com/annel0/channel-guard/internal/world"
)

func newHostFixture(t *testing.T, grid *world.MapGrid) (*Host, *guard.Manager, *sim.EventBridge) {
	t.Helper()
	jobs := sim.NewJobList()
	bridge := sim.NewEventBridge()
	manager := guard.NewManager(grid, jobs, guard.DefaultOptions())
	manager.Attach(bridge)
	host := NewHost(grid, jobs, bridge, manager, 1, time.Millisecond)
	return host, manager, bridge
}

func TestHost_CancelledJobIsForgottenNotCompleted(t *testing.T) {
	// Хост раздал работу при выключенном ядре; включение ядра отзывает
	// задачу под нависающим каналом. Её назначение восстановлено и не
	// должно стираться хостом по истечении дедлайна.
	lower := vec.Vec3{X: 0, Y: 0, Z: 5}
	upper := vec.Vec3{X: 0, Y: 0, Z: 6}
	grid := world.NewMapGrid(32, 32, 10)
	grid.SetDesignation(lower, world.DesignationChannel)
	grid.SetDesignation(upper, world.DesignationChannel)

	host, manager, bridge := newHostFixture(t, grid)

	host.tick()
	require.NotNil(t, host.jobAt(lower), "Выключенное ядро не мешает раздаче")
	require.NotNil(t, host.jobAt(upper))

	manager.Enable(context.Background())
	require.Nil(t, host.jobAt(lower), "Задача под каналом отозвана")
	require.True(t, grid.UnsafeAt(lower))
	require.Equal(t, world.DesignationChannel, grid.DesignationAt(lower),
		"Отзыв восстановил назначение")

	var completed []*sim.Job
	bridge.OnJobCompleted(func(j *sim.Job) { completed = append(completed, j) })

	// Далеко за любым дедлайном: отозванная задача забывается, живая
	// завершается штатно
	host.counter += 100
	host.completeDueJobs()

	assert.Equal(t, world.DesignationChannel, grid.DesignationAt(lower),
		"Назначение отозванной задачи переживает дедлайн")
	require.Len(t, completed, 1, "Завершиться должна только живая задача")
	assert.True(t, completed[0].Pos.Equals(upper))
	assert.Equal(t, world.DesignationNone, grid.DesignationAt(upper))
	assert.Empty(t, host.running, "Отозванная задача забыта хостом")
}

func TestHost_StartJobsSkipsUnsafeTiles(t *testing.T) {
	lower := vec.Vec3{X: 0, Y: 0, Z: 5}
	upper := vec.Vec3{X: 0, Y: 0, Z: 6}
	grid := world.NewMapGrid(32, 32, 10)
	grid.SetDesignation(lower, world.DesignationChannel)
	grid.SetDesignation(upper, world.DesignationChannel)

	host, manager, _ := newHostFixture(t, grid)
	manager.Enable(context.Background())
	require.True(t, grid.UnsafeAt(lower))

	host.tick()

	assert.Nil(t, host.jobAt(lower), "Небезопасный тайл работу не получает")
	assert.NotNil(t, host.jobAt(upper), "Готовый тайл получает работу")
}

func TestHost_TickCompletesJobsAndNotifiesCore(t *testing.T) {
	upper := vec.Vec3{X: 3, Y: 3, Z: 6}
	lower := vec.Vec3{X: 3, Y: 3, Z: 5}
	grid := world.NewMapGrid(32, 32, 10)
	grid.SetDesignation(lower, world.DesignationChannel)
	grid.SetDesignation(upper, world.DesignationChannel)

	host, manager, _ := newHostFixture(t, grid)
	manager.Enable(context.Background())
	require.True(t, grid.UnsafeAt(lower))

	// Дедлайны не превышают counter+10: за 20 тиков верхняя задача
	// успевает запуститься и завершиться, разблокировав нижний тайл
	for i := 0; i < 20; i++ {
		host.tick()
		if host.jobAt(lower) != nil {
			assert.False(t, grid.UnsafeAt(lower),
				"Работа не должна идти на небезопасном тайле")
		}
	}

	assert.Equal(t, world.DesignationNone, grid.DesignationAt(upper))
	assert.False(t, grid.UnsafeAt(lower),
		"Завершение верхнего канала снимает блокировку")
	// Нижний тайл либо уже выкопан, либо находится в работе
	if grid.DesignationAt(lower) == world.DesignationChannel {
		assert.NotNil(t, host.jobAt(lower), "Разблокированный тайл получил работу")
	}
}
