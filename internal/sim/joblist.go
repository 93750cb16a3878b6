package sim

// JobList — список активных задач симуляции (JobSource).
// Порядок вставки сохраняется; удаление допустимо во время обхода
// через снимок Jobs().
type JobList struct {
	jobs []*Job
}

// NewJobList создаёт пустой список задач
func NewJobList() *JobList {
	return &JobList{}
}

// Add добавляет задачу в список
func (jl *JobList) Add(job *Job) {
	jl.jobs = append(jl.jobs, job)
}

// Remove удаляет задачу из списка; отсутствующая задача — no-op
func (jl *JobList) Remove(job *Job) {
	for i, j := range jl.jobs {
		if j == job {
			jl.jobs = append(jl.jobs[:i], jl.jobs[i+1:]...)
			return
		}
	}
}

// Contains сообщает, находится ли задача в списке
func (jl *JobList) Contains(job *Job) bool {
	for _, j := range jl.jobs {
		if j == job {
			return true
		}
	}
	return false
}

// Jobs возвращает снимок списка для итерации
func (jl *JobList) Jobs() []*Job {
	out := make([]*Job, len(jl.jobs))
	copy(out, jl.jobs)
	return out
}

// Len возвращает число активных задач
func (jl *JobList) Len() int {
	return len(jl.jobs)
}
