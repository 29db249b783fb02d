package ports

import (
	"context"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

// ActivityProvider obtiene el historial de trades de una cuenta.
type ActivityProvider interface {
	// FetchActivity devuelve todos los trades de la cuenta, paginando hasta el final.
	// Si la cuenta no tiene actividad devuelve una lista vacía sin error.
	// Si falla una página intermedia devuelve lo obtenido hasta entonces.
	// Solo devuelve un error (domain.ErrFetchFailed) si no obtuvo ninguna página.
	FetchActivity(ctx context.Context, address string) ([]domain.Trade, error)
}
