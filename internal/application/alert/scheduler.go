package alert

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/labstock-api/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// TenantLister empresas con stock a evaluar.
type TenantLister interface {
	ListCompanyIDs(ctx context.Context) ([]string, error)
}

// Scheduler ejecuta la evaluación de alertas de todas las empresas cada interval.
type Scheduler struct {
	evaluator   *EvaluatorUseCase
	tenants     TenantLister
	interval    time.Duration
	concurrency int
	log         *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler construye el planificador. concurrency limita las empresas evaluadas en paralelo.
func NewScheduler(evaluator *EvaluatorUseCase, tenants TenantLister, interval time.Duration, concurrency int, log *logger.Logger) *Scheduler {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Scheduler{
		evaluator:   evaluator,
		tenants:     tenants,
		interval:    interval,
		concurrency: concurrency,
		log:         log.Component("alert_scheduler"),
	}
}

// Start lanza el ciclo en segundo plano. Llamadas repetidas no tienen efecto.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.interval <= 0 {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true
	go s.loop(ctx)
	s.log.Info().Dur("interval", s.interval).Int("concurrency", s.concurrency).Msg("planificador de alertas iniciado")
}

// Stop detiene el ciclo y espera a que termine la pasada en curso.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()
	<-done
	s.log.Info().Msg("planificador de alertas detenido")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Msg("pasada de alertas falló")
			}
		}
	}
}

// RunOnce evalúa todas las empresas. El error de una empresa se registra y no
// detiene a las demás; solo falla si no se puede obtener la lista de empresas.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ids, err := s.tenants.ListCompanyIDs(ctx)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			tlog := s.log.Tenant(id)
			res, err := s.evaluator.Evaluate(gctx, id)
			if err != nil {
				tlog.Error().Err(err).Msg("evaluación de alertas falló")
				return nil
			}
			tlog.Debug().
				Int("created", len(res.Created)).
				Int("updated", len(res.Updated)).
				Msg("alertas evaluadas")
			return nil
		})
	}
	return g.Wait()
}
