package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/polydrop/internal/adapters/metrics"
)

const (
	defaultDataBase = "https://data-api.polymarket.com"

	// Data API /activity: ~200/10s documentados → 60% → 12/s compartidos entre cuentas.
	defaultRatePerSec = 12
	defaultBurst      = 4

	defaultPageSize       = 500
	defaultMaxRetries     = 3
	defaultRetryWait      = 500 * time.Millisecond
	defaultRequestTimeout = 10 * time.Second
	defaultPageDelay      = 100 * time.Millisecond
)

// errNotFound indica un 404 de la API: la cuenta no tiene actividad.
var errNotFound = errors.New("not found")

// statusError es una respuesta HTTP no exitosa distinta de 404.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// retryable: 429 y 5xx son transitorios, el resto de 4xx es definitivo.
func (e *statusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Config controla paginación, reintentos y rate limiting del cliente.
type Config struct {
	DataBase       string
	PageSize       int
	MaxPages       int // 0 = sin límite; el deadline del batch acota el total
	MaxRetries     int
	RetryWait      time.Duration // base del backoff exponencial
	RequestTimeout time.Duration // timeout por intento
	PageDelay      time.Duration // pausa fija entre páginas consecutivas
	RatePerSec     float64
	Burst          int
}

// DefaultConfig devuelve la configuración de producción.
func DefaultConfig() Config {
	return Config{
		DataBase:       defaultDataBase,
		PageSize:       defaultPageSize,
		MaxRetries:     defaultMaxRetries,
		RetryWait:      defaultRetryWait,
		RequestTimeout: defaultRequestTimeout,
		PageDelay:      defaultPageDelay,
		RatePerSec:     defaultRatePerSec,
		Burst:          defaultBurst,
	}
}

// Client es el HTTP client de la Data API de Polymarket con rate limiting y retries.
type Client struct {
	http     *http.Client
	cfg      Config
	limiter  *rate.Limiter
	recorder *metrics.Recorder
}

// NewClient crea un Client. Los campos vacíos de cfg toman los valores por defecto.
// recorder puede ser nil.
func NewClient(cfg Config, recorder *metrics.Recorder) *Client {
	cfg = withDefaults(cfg)
	return &Client{
		// El timeout real es por intento (cfg.RequestTimeout) vía contexto.
		http:     &http.Client{},
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		recorder: recorder,
	}
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.DataBase == "" {
		cfg.DataBase = def.DataBase
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = def.RetryWait
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = def.RatePerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	return cfg
}

// get hace un GET con rate limiting, timeout por intento y retries con backoff.
// Devuelve errNotFound en un 404 sin reintentar.
func (c *Client) get(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.recorder.Retry()
			if err := c.sleep(ctx, attempt-1); err != nil {
				return err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.do(ctx, url, out)
		if err == nil {
			c.recorder.PageRequest(metrics.PageOK)
			return nil
		}
		if errors.Is(err, errNotFound) {
			c.recorder.PageRequest(metrics.PageNotFound)
			return err
		}
		c.recorder.PageRequest(metrics.PageError)

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if se != nil && se.Code == http.StatusTooManyRequests {
			slog.Warn("rate limited by API", "attempt", attempt+1)
		} else {
			slog.Debug("request failed, retrying", "attempt", attempt+1, "err", err)
		}
		lastErr = err
	}
	return fmt.Errorf("request failed after %d retries: %w", c.cfg.MaxRetries, lastErr)
}

// do ejecuta un único intento con su propio deadline.
func (c *Client) do(ctx context.Context, url string, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	wait := time.Duration(math.Pow(2, float64(attempt))) * c.cfg.RetryWait
	return pause(ctx, wait)
}

// pause espera d o hasta que el contexto se cancele.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
