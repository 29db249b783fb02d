package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polydrop/internal/adapters/notify"
	"github.com/alejandrodnm/polydrop/internal/domain"
)

const (
	addrA = "0x56687bf447db6ffa42ffe2204a05edaa20f55839"
	addrB = "0x1111111111111111111111111111111111112222"
)

func makeResult(addr string) domain.EligibilityResult {
	m := domain.TraderMetrics{
		TotalVolume:     24_000,
		PnL:             -150.5,
		ActiveDays:      18,
		UniqueMarkets:   9,
		TotalTrades:     120,
		ClosedPositions: 4,
		Consistency:     0.35,
		AvgTradeSize:    200,
	}
	return domain.Evaluate(addr, m, time.Now())
}

func TestConsole_Report_Table(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	results := []domain.EligibilityResult{
		makeResult(addrA),
		domain.Unavailable(addrB, time.Now()),
	}
	require.NoError(t, c.Report(context.Background(), results))

	out := buf.String()
	assert.Contains(t, out, "0x56687b...5839")
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "$24000.00")
	assert.Contains(t, out, "-$150.50")
	assert.Contains(t, out, "unavailable:1")
	assert.Contains(t, out, domain.UnavailableSuggestion)
	for _, s := range results[0].Suggestions {
		assert.Contains(t, out, s)
	}
}

func TestConsole_Report_CompactOneLinePerAddress(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	results := []domain.EligibilityResult{
		makeResult(addrA),
		domain.Unavailable(addrB, time.Now()),
	}
	require.NoError(t, c.Report(context.Background(), results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "tier:"+string(results[0].Tier))
	assert.Contains(t, lines[1], "unavailable")
}

func TestConsole_Report_Empty(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, c.Report(context.Background(), nil))
	assert.Contains(t, buf.String(), "no addresses checked")
}

func TestConsole_ReportHistory(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, c.ReportHistory(context.Background(), addrA, []domain.EligibilityResult{makeResult(addrA)}))
	assert.Contains(t, buf.String(), "1 checks")

	buf.Reset()
	require.NoError(t, c.ReportHistory(context.Background(), addrA, nil))
	assert.Contains(t, buf.String(), "no history")
}

func TestJSON_Report(t *testing.T) {
	var buf bytes.Buffer
	j := notify.NewJSONWriter(&buf)

	results := []domain.EligibilityResult{makeResult(addrA), domain.Unavailable(addrB, time.Now())}
	require.NoError(t, j.Report(context.Background(), results))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, addrA, decoded[0]["address"])
	assert.Equal(t, "unavailable", decoded[1]["status"])
	assert.Equal(t, []any{}, decoded[1]["riskFactors"])
}

func TestJSON_Report_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, notify.NewJSONWriter(&buf).Report(context.Background(), nil))
	assert.Equal(t, "[]\n", buf.String())
}
