package domain

import "math"

// Tier es el nivel de elegibilidad estimado. Orden: S > A > B > C > None.
type Tier string

const (
	TierS    Tier = "S"
	TierA    Tier = "A"
	TierB    Tier = "B"
	TierC    Tier = "C"
	TierNone Tier = "None"
)

// Rank devuelve la posición del tier para compararlos (None = 0, S = 4).
func (t Tier) Rank() int {
	switch t {
	case TierS:
		return 4
	case TierA:
		return 3
	case TierB:
		return 2
	case TierC:
		return 1
	default:
		return 0
	}
}

// Allocation es el rango estimado de tokens del airdrop. Min <= Max.
type Allocation struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Estimate es la salida del scorer para una cuenta.
type Estimate struct {
	Score      float64 // score compuesto 0..100
	Tier       Tier
	Percentile int // proxy 0..100 derivado del score, no un ranking entre cuentas
	Allocation Allocation
}

// Pesos y topes de los componentes del score compuesto.
const (
	volumeWeight      = 40
	volumeCap         = 100_000
	consistencyWeight = 30
	diversityWeight   = 15
	diversityCap      = 50
	activityWeight    = 10
	activityCap       = 200
	profitWeight      = 5
	profitCap         = 10_000

	pnlBoostMin        = 1_000
	pnlBoostPercentile = 3
	pnlBoostFactor     = 1.3
	maxPercentile      = 99.5
	penaltyConsistency = 0.2
	penaltyActiveDays  = 30
	penaltyPercentile  = 15
	penaltyFactor      = 0.7
)

// tierRule es una fila de la tabla de tiers, evaluada de mayor a menor.
type tierRule struct {
	tier       Tier
	minScore   float64
	minVolume  float64
	percentile func(score float64) float64
	base       [2]float64
}

var tierRules = []tierRule{
	{TierS, 70, 50_000, func(s float64) float64 { return math.Min(99, 90+s/10) }, [2]float64{5_000, 20_000}},
	{TierA, 50, 10_000, func(s float64) float64 { return math.Min(95, 75+s/4) }, [2]float64{1_000, 5_000}},
	{TierB, 30, 1_000, func(s float64) float64 { return math.Min(85, 50+s/2) }, [2]float64{500, 2_000}},
	{TierC, 0, 100, func(s float64) float64 { return math.Min(70, 20+s) }, [2]float64{100, 500}},
}

// CompositeScore combina cinco componentes normalizados y acotados:
//
//	volumen      min(volume/100k, 1) × 40
//	consistencia consistency × 30
//	diversidad   min(markets/50, 1) × 15
//	actividad    min(trades/200, 1) × 10
//	profit       min(pnl/10k, 1) × 5   (solo si pnl > 0)
func CompositeScore(m TraderMetrics) float64 {
	consistency := math.Max(0, math.Min(m.Consistency, 1))

	score := math.Min(m.TotalVolume/volumeCap, 1)*volumeWeight +
		consistency*consistencyWeight +
		math.Min(float64(m.UniqueMarkets)/diversityCap, 1)*diversityWeight +
		math.Min(float64(m.TotalTrades)/activityCap, 1)*activityWeight

	if m.PnL > 0 {
		score += math.Min(m.PnL/profitCap, 1) * profitWeight
	}
	return math.Max(0, score)
}

// Score asigna tier, percentil y rango de allocation a partir de las métricas.
func Score(m TraderMetrics) Estimate {
	score := CompositeScore(m)

	tier := TierNone
	percentile := math.Min(50, score)
	lo, hi := 0.0, 100.0

	for _, r := range tierRules {
		if score >= r.minScore && m.TotalVolume >= r.minVolume {
			tier = r.tier
			percentile = r.percentile(score)
			lo, hi = r.base[0], r.base[1]
			break
		}
	}

	if m.PnL >= pnlBoostMin && tier != TierNone {
		percentile = math.Min(maxPercentile, percentile+pnlBoostPercentile)
		lo *= pnlBoostFactor
		hi *= pnlBoostFactor
	}

	if m.Consistency < penaltyConsistency && m.ActiveDays < penaltyActiveDays {
		percentile = math.Max(0, percentile-penaltyPercentile)
		lo *= penaltyFactor
		hi *= penaltyFactor
	}

	return Estimate{
		Score:      score,
		Tier:       tier,
		Percentile: int(math.Round(percentile)),
		Allocation: Allocation{Min: int(math.Round(lo)), Max: int(math.Round(hi))},
	}
}
