package checker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/polydrop/internal/adapters/metrics"
	"github.com/alejandrodnm/polydrop/internal/domain"
	"github.com/alejandrodnm/polydrop/internal/ports"
)

const (
	defaultMaxAddresses = 20
	defaultBatchTimeout = 2 * time.Minute
)

// Config contiene la configuración del checker.
type Config struct {
	MaxAddresses int           // máximo de direcciones por batch
	BatchTimeout time.Duration // deadline global del batch (0 = sin deadline)
	Workers      int           // goroutines concurrentes (0 = una por dirección)
}

// DefaultConfig devuelve la configuración por defecto.
func DefaultConfig() Config {
	return Config{
		MaxAddresses: defaultMaxAddresses,
		BatchTimeout: defaultBatchTimeout,
	}
}

// Checker es el orquestador de un batch: una pipeline independiente por dirección
// (cache → fetch → métricas → scoring), resultados en el orden de entrada.
type Checker struct {
	cfg      Config
	provider ports.ActivityProvider
	cache    ports.ResultCache
	store    ports.ResultStore
	recorder *metrics.Recorder
	now      func() time.Time
}

// New crea un Checker con todas las dependencias inyectadas.
// cache, store y recorder pueden ser nil.
func New(
	cfg Config,
	provider ports.ActivityProvider,
	cache ports.ResultCache,
	store ports.ResultStore,
	recorder *metrics.Recorder,
) *Checker {
	if cfg.MaxAddresses <= 0 {
		cfg.MaxAddresses = defaultMaxAddresses
	}
	return &Checker{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		store:    store,
		recorder: recorder,
		now:      time.Now,
	}
}

// MaxAddresses devuelve el tamaño máximo de batch aceptado.
func (c *Checker) MaxAddresses() int {
	return c.cfg.MaxAddresses
}

// Check estima la elegibilidad de cada dirección.
//
// Devuelve domain.ErrInvalidInput, sin hacer ningún fetch, si el batch está vacío,
// supera MaxAddresses o contiene una dirección vacía. Un fallo de fetch no
// aborta el batch: esa dirección recibe un resultado degradado (Status unavailable).
func (c *Checker) Check(ctx context.Context, addresses []string) ([]domain.EligibilityResult, error) {
	normalized, err := c.validate(addresses)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	batchCtx := ctx
	if c.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, c.cfg.BatchTimeout)
		defer cancel()
	}

	results := make([]domain.EligibilityResult, len(normalized))

	// Las goroutines nunca devuelven error: un fallo degrada su propio resultado
	// y no cancela a las demás.
	g, gctx := errgroup.WithContext(batchCtx)
	if c.cfg.Workers > 0 {
		g.SetLimit(c.cfg.Workers)
	}
	for i, addr := range normalized {
		i, addr := i, addr
		g.Go(func() error {
			results[i] = c.checkOne(gctx, addr)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	c.recorder.BatchDuration(elapsed)

	unavailable := 0
	for _, r := range results {
		c.recorder.Result(string(r.Tier), string(r.Status))
		if !r.OK() {
			unavailable++
		}
	}
	slog.Info("batch checked",
		"addresses", len(results),
		"unavailable", unavailable,
		"elapsed", elapsed.Round(time.Millisecond),
	)

	c.persist(ctx, results)
	return results, nil
}

// Analyze construye el resultado de una dirección a partir de trades ya obtenidos.
func (c *Checker) Analyze(address string, trades []domain.Trade) domain.EligibilityResult {
	return domain.Evaluate(address, domain.ComputeMetrics(trades), c.now())
}

// checkOne ejecuta la pipeline secuencial de una dirección.
func (c *Checker) checkOne(ctx context.Context, address string) domain.EligibilityResult {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, address); ok && cached.OK() {
			c.recorder.CacheLookup(true)
			slog.Debug("cache hit", "address", address)
			return cached
		}
		c.recorder.CacheLookup(false)
	}

	trades, err := c.provider.FetchActivity(ctx, address)
	if err != nil {
		slog.Warn("activity unavailable", "address", address, "err", err)
		return domain.Unavailable(address, c.now())
	}

	result := c.Analyze(address, trades)
	slog.Debug("address analyzed",
		"address", address,
		"trades", len(trades),
		"tier", result.Tier,
		"percentile", result.Percentile,
	)

	if c.cache != nil {
		c.cache.Set(ctx, address, result)
	}
	return result
}

// persist guarda el batch en el histórico. Un fallo de storage no invalida los resultados.
func (c *Checker) persist(ctx context.Context, results []domain.EligibilityResult) {
	if c.store == nil {
		return
	}
	checkID := uuid.NewString()
	if err := c.store.SaveCheck(ctx, checkID, results); err != nil {
		slog.Warn("storage error", "check_id", checkID, "err", err)
		return
	}
	slog.Debug("check saved", "check_id", checkID, "results", len(results))
}

func (c *Checker) validate(addresses []string) ([]string, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("checker.Check: no addresses: %w", domain.ErrInvalidInput)
	}
	if len(addresses) > c.cfg.MaxAddresses {
		return nil, fmt.Errorf("checker.Check: %d addresses, max %d: %w",
			len(addresses), c.cfg.MaxAddresses, domain.ErrInvalidInput)
	}

	out := make([]string, len(addresses))
	for i, a := range addresses {
		n := NormalizeAddress(a)
		if n == "" {
			return nil, fmt.Errorf("checker.Check: address #%d is empty: %w", i+1, domain.ErrInvalidInput)
		}
		out[i] = n
	}
	return out, nil
}

// NormalizeAddress recorta espacios y pasa las direcciones hex válidas a
// minúsculas con prefijo 0x, que es como las indexa la Data API. Cualquier
// otro identificador se devuelve tal cual y será la API quien lo rechace.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return address
	}
	return strings.ToLower(common.HexToAddress(address).Hex())
}
