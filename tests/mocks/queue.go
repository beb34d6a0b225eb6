package mocks

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davicafu/reservalab/internal/jobs"
)

// RecorderQueue implementa jobs.Enqueuer guardando los jobs encolados como
// evidencia, sin ejecutarlos. Permite afirmar de forma síncrona qué se
// encoló (y qué no) en cada caso de uso.
type RecorderQueue struct {
	mu   sync.Mutex
	Jobs []jobs.Job
}

var _ jobs.Enqueuer = (*RecorderQueue)(nil)

func (q *RecorderQueue) Enqueue(kind jobs.Kind, payload interface{}) jobs.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	job := jobs.Job{
		ID:        uuid.New(),
		Kind:      kind,
		Payload:   payload,
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	q.Jobs = append(q.Jobs, job)
	return job
}

// Enqueued devuelve una copia de los jobs registrados.
func (q *RecorderQueue) Enqueued() []jobs.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]jobs.Job, len(q.Jobs))
	copy(out, q.Jobs)
	return out
}

// OfKind devuelve los jobs registrados de un tipo concreto.
func (q *RecorderQueue) OfKind(kind jobs.Kind) []jobs.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []jobs.Job
	for _, j := range q.Jobs {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}
