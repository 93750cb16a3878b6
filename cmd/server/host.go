package main

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/annel0/channel-guard/internal/guard"
	"github.com/annel0/channel-guard/internal/logging"
	"github.com/annel0/channel-guard/internal/sim"
	"github.com/annel0/channel-guard/internal/vec"
	"github.com/annel0/channel-guard/internal/world"
)

// maxJobStartsPerTick ограничивает число задач, запускаемых за один тик
const maxJobStartsPerTick = 4

// Host — демонстрационный цикл симуляции вокруг ядра. Хост — единственный
// писатель карты, списка задач и ядра: все внешние команды (REST)
// сериализуются через канал cmds и выполняются внутри тика.
type Host struct {
	grid    *world.MapGrid
	jobs    *sim.JobList
	bridge  *sim.EventBridge
	manager *guard.Manager

	cmds      chan func()
	tickEvery time.Duration
	counter   uint64
	rng       *rand.Rand

	// running — назначенный тик завершения каждой активной задачи
	running map[*sim.Job]uint64

	log *logging.Logger
}

// NewHost создаёт хост симуляции
func NewHost(grid *world.MapGrid, jobs *sim.JobList, bridge *sim.EventBridge, manager *guard.Manager, seed int64, tickEvery time.Duration) *Host {
	return &Host{
		grid:      grid,
		jobs:      jobs,
		bridge:    bridge,
		manager:   manager,
		cmds:      make(chan func(), 64),
		tickEvery: tickEvery,
		rng:       rand.New(rand.NewSource(seed)),
		running:   make(map[*sim.Job]uint64),
		log:       logging.GetSimLogger(),
	}
}

// Run крутит цикл симуляции до отмены контекста
func (h *Host) Run(ctx context.Context) {
	ticker := time.NewTicker(h.tickEvery)
	defer ticker.Stop()

	h.bridge.EmitWorldState(sim.WorldMapLoaded)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.cmds:
			cmd()
		case <-ticker.C:
			h.tick()
		}
	}
}

// tick выполняет один шаг симуляции: тик ядру, завершение созревших задач,
// запуск новых на пригодных тайлах.
func (h *Host) tick() {
	h.counter++
	h.bridge.EmitTick(h.counter)
	h.completeDueJobs()
	h.startJobs()
}

// completeDueJobs завершает задачи, чей срок истёк: выемка выполнена,
// designation снимается, ядро уведомляется. Задачи, отозванные ядром
// (исчезнувшие из списка), просто забываются: их назначение уже
// восстановлено и должно пережить дедлайн.
func (h *Host) completeDueJobs() {
	var due []*sim.Job
	for job, deadline := range h.running {
		if !h.jobs.Contains(job) {
			delete(h.running, job)
			continue
		}
		if h.counter >= deadline {
			due = append(due, job)
		}
	}
	// Стабильный порядок завершения для воспроизводимости прогонов
	sort.Slice(due, func(i, j int) bool { return due[i].ID.String() < due[j].ID.String() })

	for _, job := range due {
		delete(h.running, job)
		h.grid.SetDesignation(job.Pos, world.DesignationNone)
		h.jobs.Remove(job)
		h.bridge.EmitJobCompleted(job)
		h.log.Trace("задача %s завершена на %v", job.ID, job.Pos)
	}
}

// startJobs назначает работу на тайлы с активным назначением, не отмеченные
// небезопасными и ещё не занятые задачей.
func (h *Host) startJobs() {
	started := 0
	h.grid.EachDesignation(func(pos vec.Vec3, d world.Designation) bool {
		if started >= maxJobStartsPerTick {
			return false
		}
		if h.grid.UnsafeAt(pos) || h.jobAt(pos) != nil {
			return true
		}

		kind := sim.JobDig
		if d == world.DesignationChannel {
			kind = sim.JobChannel
		}
		job := sim.NewJob(kind, pos)
		h.jobs.Add(job)
		h.running[job] = h.counter + 3 + uint64(h.rng.Intn(8))
		h.bridge.EmitJobInitiated(job)

		// Ядро могло отозвать задачу синхронно прямо из EmitJobInitiated
		if h.jobAt(pos) == nil {
			delete(h.running, job)
			return true
		}

		started++
		return true
	})
}

// jobAt находит активную задачу на тайле
func (h *Host) jobAt(pos vec.Vec3) *sim.Job {
	for _, job := range h.jobs.Jobs() {
		if job.Pos.Equals(pos) {
			return job
		}
	}
	return nil
}

// do выполняет fn в цикле симуляции и дожидается завершения
func (h *Host) do(fn func()) {
	done := make(chan struct{})
	h.cmds <- func() {
		fn()
		close(done)
	}
	<-done
}

// Controller возвращает адаптер командной поверхности: каждая операция
// сериализуется в цикл симуляции.
func (h *Host) Controller() *HostController {
	return &HostController{host: h}
}

// HostController реализует api.GuardController поверх цикла хоста.
type HostController struct {
	host *Host
}

func (c *HostController) Enable() {
	c.host.do(func() { c.host.manager.Enable(context.Background()) })
}

func (c *HostController) Disable() {
	c.host.do(func() { c.host.manager.Disable() })
}

func (c *HostController) Rescan() {
	c.host.do(func() { c.host.manager.Rescan(context.Background()) })
}

func (c *HostController) Status() guard.Status {
	var st guard.Status
	c.host.do(func() { st = c.host.manager.Status() })
	return st
}

func (c *HostController) Dump() guard.Dump {
	var d guard.Dump
	c.host.do(func() { d = c.host.manager.Dump() })
	return d
}
