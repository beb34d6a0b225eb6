package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind identifica el tipo de trabajo diferido.
type Kind string

const (
	KindBookingConfirmation Kind = "booking-confirmation"
	KindEventUpdate         Kind = "event-update-notification"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrUnknownKind lo devuelve el ejecutor cuando el tipo de job no está registrado.
var ErrUnknownKind = errors.New("unknown job kind")

// doneHistoryLimit acota el histórico de jobs procesados: solo se conservan
// los más recientes para que un proceso de larga vida no crezca sin límite.
const doneHistoryLimit = 128

// Job es una unidad de trabajo asíncrono de mejor esfuerzo. Vive solo en
// memoria: no sobrevive al reinicio del proceso ni garantiza entrega.
type Job struct {
	ID        uuid.UUID   `json:"id"`
	Kind      Kind        `json:"kind"`
	Payload   interface{} `json:"payload"`
	Status    Status      `json:"status"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Executor procesa un job según su Kind. Un error marca el job como failed;
// el error queda contenido en la cola y nunca llega a quien lo encoló.
type Executor interface {
	Execute(ctx context.Context, job Job) error
}

// Enqueuer es el puerto que usan los servicios para encolar jobs.
type Enqueuer interface {
	Enqueue(kind Kind, payload interface{}) Job
}

// Queue es una cola FIFO en memoria con un único bucle de drenado. La
// construye la raíz de composición y se pasa por referencia: no hay estado
// global. Enqueue nunca bloquea sobre la ejecución del job.
type Queue struct {
	mu       sync.Mutex
	pending  []*Job
	draining bool
	done     []Job

	exec  Executor
	delay time.Duration // latencia simulada del envío de cada notificación
	log   *zap.Logger
}

var _ Enqueuer = (*Queue)(nil)

func NewQueue(exec Executor, delay time.Duration, log *zap.Logger) *Queue {
	return &Queue{
		exec:  exec,
		delay: delay,
		log:   log,
	}
}

// Enqueue añade un job al final de la cola y, si no hay un bucle de drenado
// activo, arranca uno. Devuelve una copia del job tal y como fue encolado.
func (q *Queue) Enqueue(kind Kind, payload interface{}) Job {
	job := &Job{
		ID:        uuid.New(),
		Kind:      kind,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	q.mu.Lock()
	q.pending = append(q.pending, job)
	start := !q.draining
	if start {
		q.draining = true
	}
	// La copia se toma bajo el mutex: una vez liberado, el bucle de drenado
	// puede estar escribiendo ya sobre *job.
	snapshot := *job
	q.mu.Unlock()

	q.log.Info("📨 Job encolado",
		zap.String("job_id", snapshot.ID.String()),
		zap.String("kind", string(kind)),
	)

	if start {
		go q.drain()
	}

	return snapshot
}

// drain procesa la cola en orden FIFO estricto hasta vaciarla. Nunca hay más
// de un drain concurrente: 'draining' solo lo apaga el propio bucle al salir.
func (q *Queue) drain() {
	ctx := context.Background()

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.log.Info("⚙️ Procesando job",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(job.Kind)),
		)

		if q.delay > 0 {
			time.Sleep(q.delay)
		}

		err := q.exec.Execute(ctx, *job)

		q.mu.Lock()
		if err != nil {
			// Sin reintentos ni dead-letter: el fallo se registra y se sigue
			// con el siguiente job.
			job.Status = StatusFailed
			job.Error = err.Error()
		} else {
			job.Status = StatusCompleted
		}
		q.done = append(q.done, *job)
		if len(q.done) > doneHistoryLimit {
			q.done = q.done[len(q.done)-doneHistoryLimit:]
		}
		q.mu.Unlock()

		if err != nil {
			q.log.Warn("⚠️ Job fallido",
				zap.String("job_id", job.ID.String()),
				zap.String("kind", string(job.Kind)),
				zap.Error(err),
			)
		} else {
			q.log.Info("✅ Job completado",
				zap.String("job_id", job.ID.String()),
				zap.String("kind", string(job.Kind)),
			)
		}
	}
}

// PendingCount devuelve cuántos jobs esperan en la cola.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Processed devuelve una copia de los jobs ya procesados, en orden de ejecución.
func (q *Queue) Processed() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, len(q.done))
	copy(out, q.done)
	return out
}

// Idle indica que no quedan jobs pendientes ni un drenado en curso.
func (q *Queue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) == 0 && !q.draining
}
