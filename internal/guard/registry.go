package guard

import (
	"github.com/annel0/channel-guard/internal/sim"
	"github.com/annel0/channel-guard/internal/vec"
)

// DigJobRegistry индексирует активные задачи выемки по позиции тайла
// (и вторично по слою глубины) для быстрого поиска. Ссылки на задачи
// действительны только в пределах текущего перескана или события.
type DigJobRegistry struct {
	byPos   map[vec.Vec3]*sim.Job
	byLayer map[int][]*sim.Job
}

// NewDigJobRegistry создаёт пустой реестр
func NewDigJobRegistry() *DigJobRegistry {
	return &DigJobRegistry{
		byPos:   make(map[vec.Vec3]*sim.Job),
		byLayer: make(map[int][]*sim.Job),
	}
}

// Rebuild очищает реестр и заполняет его одним проходом по списку задач,
// оставляя только задачи выемки (dig/channel).
func (r *DigJobRegistry) Rebuild(jobs *sim.JobList) {
	r.byPos = make(map[vec.Vec3]*sim.Job)
	r.byLayer = make(map[int][]*sim.Job)

	for _, job := range jobs.Jobs() {
		if !job.Kind.IsExcavation() {
			continue
		}
		r.byPos[job.Pos] = job
		r.byLayer[job.Pos.Z] = append(r.byLayer[job.Pos.Z], job)
	}
}

// Find возвращает задачу ровно на этом тайле, либо nil
func (r *DigJobRegistry) Find(pos vec.Vec3) *sim.Job {
	return r.byPos[pos]
}

// AtLayer возвращает задачи выемки на указанном слое глубины
func (r *DigJobRegistry) AtLayer(z int) []*sim.Job {
	return r.byLayer[z]
}

// Remove исключает задачу из индексов; отсутствующая задача — no-op
func (r *DigJobRegistry) Remove(job *sim.Job) {
	if job == nil {
		return
	}
	if r.byPos[job.Pos] == job {
		delete(r.byPos, job.Pos)
	}
	layer := r.byLayer[job.Pos.Z]
	for i, j := range layer {
		if j == job {
			r.byLayer[job.Pos.Z] = append(layer[:i], layer[i+1:]...)
			break
		}
	}
}

// Len возвращает число проиндексированных задач
func (r *DigJobRegistry) Len() int {
	return len(r.byPos)
}

// Jobs возвращает все проиндексированные задачи выемки
func (r *DigJobRegistry) Jobs() []*sim.Job {
	out := make([]*sim.Job, 0, len(r.byPos))
	for _, job := range r.byPos {
		out = append(out, job)
	}
	return out
}
