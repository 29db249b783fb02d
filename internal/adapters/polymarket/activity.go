package polymarket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/polydrop/internal/adapters/metrics"
	"github.com/alejandrodnm/polydrop/internal/domain"
)

// FetchActivity obtiene el historial completo de trades de una cuenta usando
// GET /activity de la Data API, paginando hasta recibir una página incompleta.
//
//   - 404 → la cuenta no tiene actividad: lista vacía, sin error.
//   - Falla la primera página → error con domain.ErrFetchFailed.
//   - Falla una página posterior → devuelve lo obtenido hasta entonces.
func (c *Client) FetchActivity(ctx context.Context, address string) ([]domain.Trade, error) {
	var all []domain.Trade

	for page := 0; c.cfg.MaxPages <= 0 || page < c.cfg.MaxPages; page++ {
		if page > 0 {
			// Pausa fija entre páginas para no disparar el rate limit de la API.
			// Si el contexto se cancela, la request siguiente falla y se usa lo obtenido.
			_ = pause(ctx, c.cfg.PageDelay)
		}

		offset := page * c.cfg.PageSize
		var resp []rawActivity
		err := c.get(ctx, c.activityURL(address, offset), &resp)

		if errors.Is(err, errNotFound) {
			slog.Debug("no activity found", "address", shortAddr(address), "offset", offset)
			break
		}
		if err != nil {
			if page == 0 {
				c.recorder.Fetch(metrics.FetchFailed)
				return nil, fmt.Errorf("polymarket.FetchActivity: %s: %w: %w", shortAddr(address), domain.ErrFetchFailed, err)
			}
			slog.Warn("activity fetch incomplete, using partial history",
				"address", shortAddr(address),
				"pages", page,
				"trades", len(all),
				"err", err,
			)
			c.recorder.Fetch(metrics.FetchPartial)
			return all, nil
		}

		all = append(all, mapActivity(address, resp)...)

		slog.Debug("fetched activity page",
			"address", shortAddr(address),
			"page", page,
			"count", len(resp),
			"total", len(all),
		)

		if len(resp) < c.cfg.PageSize {
			break
		}
	}

	c.recorder.Fetch(metrics.FetchComplete)
	return all, nil
}

func (c *Client) activityURL(address string, offset int) string {
	q := url.Values{}
	q.Set("user", address)
	q.Set("limit", strconv.Itoa(c.cfg.PageSize))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("type", activityTypeTrade)
	q.Set("sortBy", "TIMESTAMP")
	q.Set("sortDirection", "DESC")
	return c.cfg.DataBase + "/activity?" + q.Encode()
}

// shortAddr acorta una dirección para logs.
func shortAddr(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
