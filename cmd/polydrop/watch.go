package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/polydrop/internal/application/checker"
	"github.com/alejandrodnm/polydrop/internal/ports"
)

// runWatch comprueba la lista al arrancar y después según el schedule, hasta que ctx se cancele.
func runWatch(ctx context.Context, chk *checker.Checker, reporter ports.Reporter, schedule string, addresses []string) error {
	w, err := checker.NewWatcher(chk, reporter, schedule, addresses)
	if err != nil {
		return err
	}

	slog.Info("=== WATCH MODE ===", "schedule", schedule, "addresses", len(addresses))
	if err := w.RunNow(ctx); err != nil {
		return fmt.Errorf("initial run: %w", err)
	}

	w.Start(ctx)
	<-ctx.Done()
	w.Stop()
	return nil
}
