package domain

import "time"

// Side es el lado de un fill: compra o venta de shares de un outcome.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trade es un fill histórico de una cuenta, tal como lo devuelve la Data API.
// Es inmutable: el matcher trabaja sobre copias de los tamaños.
type Trade struct {
	Account      string
	Timestamp    int64 // unix seconds
	ConditionID  string
	OutcomeIndex int
	Side         Side
	Size         float64 // shares
	Price        float64 // 0..1
	USDCSize     float64 // notional en USD; 0 si la API no lo informa
	TxHash       string
}

// Time devuelve el timestamp como time.Time en UTC.
func (t Trade) Time() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

// Notional devuelve el volumen en USD del trade: usdcSize si viene informado,
// size × price en caso contrario.
func (t Trade) Notional() float64 {
	if t.USDCSize > 0 {
		return t.USDCSize
	}
	return t.Size * t.Price
}

// positionKey identifica una posición: un outcome concreto de un mercado.
type positionKey struct {
	conditionID  string
	outcomeIndex int
}
