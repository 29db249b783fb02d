package ports

import (
	"context"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

// Reporter presenta los resultados de un batch al usuario.
type Reporter interface {
	// Report muestra un resultado por dirección, en el orden recibido.
	Report(ctx context.Context, results []domain.EligibilityResult) error
}
