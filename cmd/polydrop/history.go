package main

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/polydrop/internal/adapters/notify"
	"github.com/alejandrodnm/polydrop/internal/adapters/storage"
	"github.com/alejandrodnm/polydrop/internal/application/checker"
)

const historyLimit = 20

func runHistory(ctx context.Context, store *storage.SQLiteStorage, console *notify.Console, address string) error {
	if store == nil {
		return fmt.Errorf("history: storage.dsn is not configured")
	}
	address = checker.NormalizeAddress(address)

	history, err := store.GetHistory(ctx, address, historyLimit)
	if err != nil {
		return err
	}
	return console.ReportHistory(ctx, address, history)
}
