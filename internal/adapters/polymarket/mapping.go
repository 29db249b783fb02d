package polymarket

import (
	"strconv"
	"strings"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

const activityTypeTrade = "TRADE"

// mapActivity convierte los registros raw a domain.Trade.
// Descarta lo que no es un fill BUY/SELL (splits, merges, redeems, rewards).
func mapActivity(address string, raw []rawActivity) []domain.Trade {
	trades := make([]domain.Trade, 0, len(raw))
	for _, r := range raw {
		if r.Type != "" && !strings.EqualFold(r.Type, activityTypeTrade) {
			continue
		}

		side := domain.Side(strings.ToUpper(r.Side))
		if side != domain.SideBuy && side != domain.SideSell {
			continue
		}

		account := r.ProxyWallet
		if account == "" {
			account = address
		}

		trades = append(trades, domain.Trade{
			Account:      account,
			Timestamp:    parseTimestamp(r.Timestamp),
			ConditionID:  r.ConditionID,
			OutcomeIndex: int(numberInt(r.OutcomeIndex)),
			Side:         side,
			Size:         numberFloat(r.Size),
			Price:        numberFloat(r.Price),
			USDCSize:     numberFloat(r.USDCSize),
			TxHash:       r.TransactionHash,
		})
	}
	return trades
}

func numberFloat(n number) float64 {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

func numberInt(n number) int64 {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i
	}
	return int64(numberFloat(n))
}

// parseTimestamp devuelve unix seconds. Acepta segundos, milisegundos y float.
func parseTimestamp(n number) int64 {
	s := n.String()
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		if sec > 1e12 {
			return sec / 1000
		}
		return sec
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f > 1e12 {
			return int64(f / 1000)
		}
		return int64(f)
	}
	return 0
}
