package checker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/alejandrodnm/polydrop/internal/ports"
)

// Watcher re-comprueba periódicamente una lista fija de direcciones.
// Las listas más largas que MaxAddresses se parten en varios batches.
type Watcher struct {
	cron      *cron.Cron
	checker   *Checker
	reporter  ports.Reporter
	addresses []string

	mu  sync.Mutex
	ctx context.Context
}

// NewWatcher registra la comprobación con el schedule dado (formato cron de
// 5 campos o descriptores como "@hourly" / "@every 30m").
func NewWatcher(checker *Checker, reporter ports.Reporter, schedule string, addresses []string) (*Watcher, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("checker.NewWatcher: empty watch list")
	}

	logger := cronLogger{}
	w := &Watcher{
		// Una ejecución lenta no se solapa con la siguiente.
		cron:      cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger))),
		checker:   checker,
		reporter:  reporter,
		addresses: addresses,
		ctx:       context.Background(),
	}
	if _, err := w.cron.AddFunc(schedule, w.tick); err != nil {
		return nil, fmt.Errorf("checker.NewWatcher: schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start arranca el scheduler. ctx acota cada ejecución programada.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	w.cron.Start()
	slog.Info("watcher started", "addresses", len(w.addresses))
}

// Stop detiene el scheduler y espera a que termine la ejecución en curso.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
	slog.Info("watcher stopped")
}

// RunNow comprueba la lista completa inmediatamente, batch a batch.
// Devuelve el primer error de validación o de reporte.
func (w *Watcher) RunNow(ctx context.Context) error {
	size := w.checker.MaxAddresses()
	for start := 0; start < len(w.addresses); start += size {
		end := min(start+size, len(w.addresses))

		results, err := w.checker.Check(ctx, w.addresses[start:end])
		if err != nil {
			return fmt.Errorf("checker.RunNow: batch %d-%d: %w", start, end, err)
		}
		if w.reporter != nil {
			if err := w.reporter.Report(ctx, results); err != nil {
				return fmt.Errorf("checker.RunNow: report: %w", err)
			}
		}
	}
	return nil
}

func (w *Watcher) tick() {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := w.RunNow(ctx); err != nil {
		slog.Error("watch run failed", "err", err)
	}
}

// cronLogger adapta cron.Logger a slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
