package guard

import (
	"github.com/annel0/channel-guard/internal/logging"
	"github.com/annel0/channel-guard/internal/sim"
	"github.com/annel0/channel-guard/internal/world"
)

// JobCanceller синхронно отзывает задачу выемки и возвращает её тайл
// в согласованное состояние "запрошено, но не начато".
type JobCanceller struct {
	grid      world.Grid
	jobs      *sim.JobList
	registry  *DigJobRegistry
	metrics   *Metrics
	publisher *Publisher
	log       *logging.Logger
}

// NewJobCanceller создаёт отзыватель задач
func NewJobCanceller(grid world.Grid, jobs *sim.JobList, registry *DigJobRegistry, metrics *Metrics, publisher *Publisher) *JobCanceller {
	return &JobCanceller{
		grid:      grid,
		jobs:      jobs,
		registry:  registry,
		metrics:   metrics,
		publisher: publisher,
		log:       logging.GetGuardLogger(),
	}
}

// Cancel отзывает задачу: возвращает designation тайла к запрошенному до
// начала работы виду (по виду задачи) и удаляет задачу из списка
// симуляции. Идемпотентен: nil или уже исчезнувшая задача — no-op.
func (jc *JobCanceller) Cancel(job *sim.Job) {
	if job == nil {
		return
	}
	if jc.registry.Find(job.Pos) != job {
		return // Задача уже исчезла
	}

	if chunk := jc.grid.ChunkAt(job.Pos); chunk != nil {
		local := job.Pos.LocalInChunk()
		switch job.Kind {
		case sim.JobChannel:
			chunk.SetDesignation(local, world.DesignationChannel)
		case sim.JobDig:
			chunk.SetDesignation(local, world.DesignationDig)
		}
	}

	jc.jobs.Remove(job)
	jc.registry.Remove(job)

	jc.metrics.IncCancelled()
	jc.publisher.JobCancelled(job)
	jc.log.Debug("задача %s (%s) на %v отозвана", job.ID, job.Kind, job.Pos)
}
