package domain

// metrics.go: position matching FIFO y métricas derivadas de un trader.
//
// Los importes se acumulan con decimal para que el resultado no dependa del
// orden de las sumas: misma lista de trades en cualquier orden → mismas métricas,
// bit a bit.

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// closedTolerance es la diferencia máxima (en shares) entre compras y ventas
	// para considerar una posición cerrada.
	closedTolerance = 1e-4
	secondsPerDay   = 86400
	dayLayout       = "2006-01-02"
)

// TraderMetrics son las métricas derivadas del historial de una cuenta.
// Importes en USD redondeados a 2 decimales.
type TraderMetrics struct {
	TotalVolume     float64 `json:"totalVolume"`
	PnL             float64 `json:"pnl"`
	ActiveDays      int     `json:"activeDays"`
	UniqueMarkets   int     `json:"uniqueMarkets"`
	TotalTrades     int     `json:"totalTrades"`
	ClosedPositions int     `json:"closedPositions"`
	Consistency     float64 `json:"consistency"` // días activos / días transcurridos, en [0,1]
	AvgTradeSize    float64 `json:"avgTradeSize"`
}

// IsZero devuelve true si todas las métricas son cero.
func (m TraderMetrics) IsZero() bool {
	return m == TraderMetrics{}
}

// position agrupa las compras y ventas de un (mercado, outcome).
type position struct {
	buys  []Trade
	sells []Trade
}

// ComputeMetrics calcula las métricas de un historial de trades.
// Ordena internamente, así que el orden de entrada es irrelevante.
func ComputeMetrics(trades []Trade) TraderMetrics {
	if len(trades) == 0 {
		return TraderMetrics{}
	}

	sorted := SortTrades(trades)

	volume := decimal.Zero
	days := make(map[string]struct{})
	markets := make(map[string]struct{})
	positions := make(map[positionKey]*position)
	keys := make([]positionKey, 0)

	for _, t := range sorted {
		volume = volume.Add(decimal.NewFromFloat(t.Notional()))
		days[t.Time().Format(dayLayout)] = struct{}{}
		markets[t.ConditionID] = struct{}{}

		key := positionKey{conditionID: t.ConditionID, outcomeIndex: t.OutcomeIndex}
		p, ok := positions[key]
		if !ok {
			p = &position{}
			positions[key] = p
			keys = append(keys, key)
		}
		// sorted ya está ordenado, así que buys y sells quedan en orden FIFO
		switch t.Side {
		case SideBuy:
			p.buys = append(p.buys, t)
		case SideSell:
			p.sells = append(p.sells, t)
		}
	}

	pnl := decimal.Zero
	closed := 0
	for _, key := range keys {
		p := positions[key]
		pnl = pnl.Add(matchFIFO(p.buys, p.sells))
		if p.isClosed() {
			closed++
		}
	}

	activeDays := len(days)
	consistency := Consistency(activeDays, sorted[0].Timestamp, sorted[len(sorted)-1].Timestamp)
	avg := volume.Div(decimal.NewFromInt(int64(len(sorted))))

	return TraderMetrics{
		TotalVolume:     round2(volume),
		PnL:             round2(pnl),
		ActiveDays:      activeDays,
		UniqueMarkets:   len(markets),
		TotalTrades:     len(sorted),
		ClosedPositions: closed,
		Consistency:     consistency,
		AvgTradeSize:    round2(avg),
	}
}

// matchFIFO empareja cada venta con los lotes de compra más antiguos y devuelve
// el PnL realizado: Σ (precio venta − precio compra) × cantidad emparejada.
// Lo que queda sin emparejar es exposición abierta y no aporta PnL.
func matchFIFO(buys, sells []Trade) decimal.Decimal {
	pnl := decimal.Zero
	if len(buys) == 0 || len(sells) == 0 {
		return pnl
	}

	bi := 0
	remainingBuy := decimal.NewFromFloat(buys[0].Size)

	for _, sell := range sells {
		remainingSell := decimal.NewFromFloat(sell.Size)
		sellPrice := decimal.NewFromFloat(sell.Price)

		for remainingSell.IsPositive() && bi < len(buys) {
			if !remainingBuy.IsPositive() {
				bi++
				if bi < len(buys) {
					remainingBuy = decimal.NewFromFloat(buys[bi].Size)
				}
				continue
			}

			matched := decimal.Min(remainingSell, remainingBuy)
			buyPrice := decimal.NewFromFloat(buys[bi].Price)
			pnl = pnl.Add(sellPrice.Sub(buyPrice).Mul(matched))

			remainingSell = remainingSell.Sub(matched)
			remainingBuy = remainingBuy.Sub(matched)
		}
	}
	return pnl
}

// isClosed devuelve true si la cantidad comprada y vendida coinciden dentro de closedTolerance.
func (p *position) isClosed() bool {
	diff := sumSize(p.buys).Sub(sumSize(p.sells)).Abs()
	return diff.LessThan(decimal.NewFromFloat(closedTolerance))
}

func sumSize(trades []Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.Size))
	}
	return total
}

// Consistency calcula días activos / días transcurridos entre el primer y el
// último trade, con un mínimo de 1 día. Dos trades en días naturales distintos
// pueden estar a menos de 24h, así que el ratio se acota a 1.
func Consistency(activeDays int, first, last int64) float64 {
	if activeDays <= 0 {
		return 0
	}
	span := last - first
	if span < 0 {
		span = -span
	}
	elapsed := max(1, (span+secondsPerDay-1)/secondsPerDay)

	ratio := decimal.NewFromInt(int64(activeDays)).Div(decimal.NewFromInt(elapsed))
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return 1
	}
	return round2(ratio)
}

// SortTrades devuelve una copia ordenada por timestamp ascendente.
// Los empates se resuelven por el contenido del trade y, si son idénticos,
// se mantiene el orden de llegada.
func SortTrades(trades []Trade) []Trade {
	sorted := make([]Trade, len(trades))
	copy(sorted, trades)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.TxHash != b.TxHash {
			return a.TxHash < b.TxHash
		}
		if a.ConditionID != b.ConditionID {
			return a.ConditionID < b.ConditionID
		}
		if a.OutcomeIndex != b.OutcomeIndex {
			return a.OutcomeIndex < b.OutcomeIndex
		}
		if a.Side != b.Side {
			return a.Side < b.Side
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		if a.Size != b.Size {
			return a.Size < b.Size
		}
		return a.USDCSize < b.USDCSize
	})
	return sorted
}

var half = decimal.New(5, -1)

// round2 redondea a 2 decimales con los empates hacia +∞ (-0.005 → 0, 0.005 → 0.01).
func round2(d decimal.Decimal) float64 {
	return d.Shift(2).Add(half).Floor().Shift(-2).InexactFloat64()
}
