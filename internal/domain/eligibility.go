package domain

import "time"

// Status distingue una cuenta analizada de una que no se pudo analizar.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
)

// UnavailableSuggestion es la sugerencia de un resultado degradado.
const UnavailableSuggestion = "Unable to fetch trading data for this address - please verify it and try again"

// EligibilityResult es la estimación final de una cuenta. Se construye una vez
// por item del batch y no se modifica después.
type EligibilityResult struct {
	Address     string        `json:"address"`
	Status      Status        `json:"status"`
	Metrics     TraderMetrics `json:"metrics"`
	Tier        Tier          `json:"tier"`
	Percentile  int           `json:"percentile"`
	Allocation  Allocation    `json:"allocation"`
	Suggestions []string      `json:"suggestions"`
	RiskFactors []string      `json:"riskFactors"`
	CheckedAt   time.Time     `json:"checkedAt"`
}

// Evaluate construye el resultado de una cuenta a partir de sus métricas.
func Evaluate(address string, m TraderMetrics, now time.Time) EligibilityResult {
	est := Score(m)
	return EligibilityResult{
		Address:     address,
		Status:      StatusOK,
		Metrics:     m,
		Tier:        est.Tier,
		Percentile:  est.Percentile,
		Allocation:  est.Allocation,
		Suggestions: GenerateSuggestions(m),
		RiskFactors: DetectRiskFactors(m),
		CheckedAt:   now.UTC(),
	}
}

// Unavailable construye el resultado degradado de una cuenta cuyo fetch falló:
// métricas a cero, tier None y la sugerencia de verificar la dirección.
func Unavailable(address string, now time.Time) EligibilityResult {
	return EligibilityResult{
		Address:     address,
		Status:      StatusUnavailable,
		Tier:        TierNone,
		Allocation:  Allocation{},
		Suggestions: []string{UnavailableSuggestion},
		RiskFactors: []string{},
		CheckedAt:   now.UTC(),
	}
}

// OK devuelve true si la cuenta se analizó con datos reales.
func (r EligibilityResult) OK() bool {
	return r.Status == StatusOK
}
