package ports

import (
	"context"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

// ResultCache guarda resultados por dirección durante un TTL fijo.
// Las implementaciones deben ser seguras para uso concurrente.
type ResultCache interface {
	Get(ctx context.Context, address string) (domain.EligibilityResult, bool)
	Set(ctx context.Context, address string, result domain.EligibilityResult)
}
