package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

// Console implementa ports.Reporter sobre un terminal.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un reporter sobre un writer arbitrario (tests).
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Report imprime los resultados en el modo configurado.
func (c *Console) Report(_ context.Context, results []domain.EligibilityResult) error {
	if len(results) == 0 {
		fmt.Fprintf(c.out, "[%s] no addresses checked\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(results)
	} else {
		c.printCompact(results)
	}
	return nil
}

// ReportHistory imprime el histórico de una dirección, más reciente primero.
func (c *Console) ReportHistory(_ context.Context, address string, history []domain.EligibilityResult) error {
	if len(history) == 0 {
		fmt.Fprintf(c.out, "no history for %s\n", address)
		return nil
	}

	fmt.Fprintf(c.out, "\nHistory for %s (%d checks)\n", address, len(history))
	table := tablewriter.NewWriter(c.out)
	table.Header("Checked", "Status", "Tier", "Pct", "Allocation", "Volume", "PnL", "Days")
	for _, r := range history {
		table.Append(
			r.CheckedAt.Local().Format("2006-01-02 15:04"),
			string(r.Status),
			tierIcon(r.Tier),
			fmt.Sprintf("%d", r.Percentile),
			allocationLabel(r.Allocation),
			money(r.Metrics.TotalVolume),
			money(r.Metrics.PnL),
			fmt.Sprintf("%d", r.Metrics.ActiveDays),
		)
	}
	table.Render()
	return nil
}

// printCompact imprime una línea por dirección.
func (c *Console) printCompact(results []domain.EligibilityResult) {
	now := time.Now().Format("15:04:05")
	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(c.out, "[%s] %s unavailable\n", now, compactAddr(r.Address))
			continue
		}
		m := r.Metrics
		line := fmt.Sprintf("[%s] %s tier:%s p%d alloc:%s vol:%s pnl:%s days:%d mkts:%d cons:%.2f",
			now, compactAddr(r.Address), r.Tier, r.Percentile, allocationLabel(r.Allocation),
			money(m.TotalVolume), money(m.PnL), m.ActiveDays, m.UniqueMarkets, m.Consistency)
		if n := len(r.RiskFactors); n > 0 {
			line += fmt.Sprintf(" risks:%d", n)
		}
		fmt.Fprintln(c.out, line)
	}
}

// printFull imprime la tabla del batch y el detalle por dirección.
func (c *Console) printFull(results []domain.EligibilityResult) {
	fmt.Fprintf(c.out, "\n[%s] %d addresses checked, %s\n",
		time.Now().Format("15:04:05"), len(results), tierSummary(results))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Address", "Status", "Tier", "Pct", "Allocation", "Volume", "PnL", "Days", "Mkts", "Cons")
	for i, r := range results {
		m := r.Metrics
		table.Append(
			fmt.Sprintf("%d", i+1),
			compactAddr(r.Address),
			string(r.Status),
			tierIcon(r.Tier),
			fmt.Sprintf("%d", r.Percentile),
			allocationLabel(r.Allocation),
			money(m.TotalVolume),
			money(m.PnL),
			fmt.Sprintf("%d", m.ActiveDays),
			fmt.Sprintf("%d", m.UniqueMarkets),
			fmt.Sprintf("%.2f", m.Consistency),
		)
	}
	table.Render()

	for _, r := range results {
		if len(r.Suggestions) == 0 && len(r.RiskFactors) == 0 {
			continue
		}
		fmt.Fprintf(c.out, "\n%s\n", r.Address)
		for _, rf := range r.RiskFactors {
			fmt.Fprintf(c.out, "  ⚠ %s\n", rf)
		}
		for _, s := range r.Suggestions {
			fmt.Fprintf(c.out, "  → %s\n", s)
		}
	}
	fmt.Fprintln(c.out)
}

// --- helpers ---

func tierIcon(t domain.Tier) string {
	switch t {
	case domain.TierS:
		return "S ★"
	case domain.TierNone:
		return "-"
	default:
		return string(t)
	}
}

// tierSummary cuenta resultados por tier, p.ej. "S:1 A:0 B:2 C:0 none:1 unavailable:1".
func tierSummary(results []domain.EligibilityResult) string {
	counts := make(map[domain.Tier]int)
	unavailable := 0
	for _, r := range results {
		if !r.OK() {
			unavailable++
			continue
		}
		counts[r.Tier]++
	}

	parts := make([]string, 0, 6)
	for _, t := range []domain.Tier{domain.TierS, domain.TierA, domain.TierB, domain.TierC} {
		parts = append(parts, fmt.Sprintf("%s:%d", t, counts[t]))
	}
	parts = append(parts, fmt.Sprintf("none:%d", counts[domain.TierNone]))
	if unavailable > 0 {
		parts = append(parts, fmt.Sprintf("unavailable:%d", unavailable))
	}
	return strings.Join(parts, " ")
}

func allocationLabel(a domain.Allocation) string {
	return fmt.Sprintf("%d-%d", a.Min, a.Max)
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

// compactAddr acorta direcciones hex para que la tabla quepa en 120 columnas.
func compactAddr(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}
