package domain

import (
	"fmt"
	"math"
)

// Umbrales de las reglas de riesgo y sugerencias.
const (
	farmingMinVolume   = 10_000
	farmingMaxPnLRatio = 0.01
	washMinTrades      = 100
	washMaxMarkets     = 5
	lowConsistency     = 0.1
	lossMinVolume      = 50_000
	lossMaxPnL         = -1_000
	targetVolume       = 1_000
	targetActiveDays   = 30
	targetMarkets      = 10
	targetClosed       = 5
	targetConsistency  = 0.3
)

// DetectRiskFactors evalúa patrones sospechosos (farming delta-neutral, wash trading).
// Cada regla se evalúa de forma independiente.
func DetectRiskFactors(m TraderMetrics) []string {
	risks := make([]string, 0)

	if m.TotalVolume > farmingMinVolume && math.Abs(m.PnL) < m.TotalVolume*farmingMaxPnLRatio {
		risks = append(risks, "Potential delta-neutral farming detected (high volume, near-zero PNL)")
	}

	if m.TotalTrades > washMinTrades && m.UniqueMarkets < washMaxMarkets {
		risks = append(risks, "Limited market diversity despite high trade count")
	}

	// Sin historial no hay periodos de inactividad que señalar
	if m.TotalTrades > 0 && m.Consistency < lowConsistency {
		risks = append(risks, "Low trading consistency (inactive for extended periods)")
	}

	if m.TotalVolume > lossMinVolume && m.PnL < lossMaxPnL {
		risks = append(risks, "High volume with significant negative PNL")
	}

	return risks
}

// GenerateSuggestions devuelve acciones concretas para mejorar la elegibilidad,
// en orden fijo: volumen, días activos, mercados, posiciones cerradas, frecuencia.
func GenerateSuggestions(m TraderMetrics) []string {
	suggestions := make([]string, 0)

	if m.TotalVolume < targetVolume {
		suggestions = append(suggestions, fmt.Sprintf(
			"Increase trading volume to at least $1,000 (currently $%.0f)", math.Round(m.TotalVolume)))
	}

	if m.ActiveDays < targetActiveDays {
		suggestions = append(suggestions, fmt.Sprintf(
			"Trade for %d more days to improve consistency", targetActiveDays-m.ActiveDays))
	}

	if m.UniqueMarkets < targetMarkets {
		suggestions = append(suggestions, fmt.Sprintf(
			"Trade in %d more markets to diversify", targetMarkets-m.UniqueMarkets))
	}

	if m.ClosedPositions < targetClosed {
		suggestions = append(suggestions, "Close more positions to demonstrate complete trading cycles")
	}

	if m.Consistency < targetConsistency {
		suggestions = append(suggestions, "Increase trading frequency - aim for at least 3 days per week")
	}

	return suggestions
}
