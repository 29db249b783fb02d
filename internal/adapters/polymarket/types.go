package polymarket

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DTOs raw de la Data API. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// rawActivity es un registro de GET /activity.
// La API devuelve algunos números como strings JSON, a veces vacíos: usamos number.
type rawActivity struct {
	ProxyWallet     string `json:"proxyWallet"`
	Timestamp       number `json:"timestamp"`
	ConditionID     string `json:"conditionId"`
	Type            string `json:"type"`
	Size            number `json:"size"`
	USDCSize        number `json:"usdcSize"`
	Price           number `json:"price"`
	Side            string `json:"side"`
	OutcomeIndex    number `json:"outcomeIndex"`
	TransactionHash string `json:"transactionHash"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
}

// number es un número JSON tolerante: acepta 12.5, "12.5", "" y null.
// Un valor vacío o no numérico se guarda vacío y se interpreta como 0.
type number string

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		*n = ""
		return nil
	}
	*n = number(data)
	return nil
}

func (n number) String() string {
	return string(n)
}
