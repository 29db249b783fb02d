package ports

import (
	"context"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

// ResultStore persiste el histórico de comprobaciones.
type ResultStore interface {
	// SaveCheck persiste un batch completo bajo el checkID dado.
	SaveCheck(ctx context.Context, checkID string, results []domain.EligibilityResult) error

	// GetHistory devuelve los últimos resultados de una dirección, del más reciente al más antiguo.
	GetHistory(ctx context.Context, address string, limit int) ([]domain.EligibilityResult, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
