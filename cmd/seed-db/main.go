// Command seed-db populates a development database with products, payment
// methods, sample coupons, and an API key.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/commercekit/backoffice/internal/domain/coupon"
	"github.com/commercekit/backoffice/internal/repository"
)

type productJSON struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	Price          decimal.Decimal `json:"price"`
	Image          string          `json:"image"`
	StockQuantity  int             `json:"stockQuantity"`
	UnlimitedStock bool            `json:"isUnlimitedStock"`
}

const (
	upsertProductSQL = `INSERT INTO products (id, name, sku, price, image, stock_quantity, is_unlimited_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, sku = EXCLUDED.sku, price = EXCLUDED.price,
			image = EXCLUDED.image, stock_quantity = EXCLUDED.stock_quantity,
			is_unlimited_stock = EXCLUDED.is_unlimited_stock, updated_at = NOW()`

	upsertPaymentMethodSQL = `INSERT INTO payment_methods (id, provider, status, is_default)
		VALUES ($1, $2, 'ACTIVE', $3)
		ON CONFLICT (id) DO UPDATE SET provider = EXCLUDED.provider, is_default = EXCLUDED.is_default`

	upsertCouponSQL = `INSERT INTO coupons (id, code, type, value, status, starts_at, ends_at, usage_limit)
		VALUES ($1, $2, $3, $4, 'ACTIVE', $5, $6, $7)
		ON CONFLICT (code) DO UPDATE SET
			type = EXCLUDED.type, value = EXCLUDED.value, status = 'ACTIVE',
			starts_at = EXCLUDED.starts_at, ends_at = EXCLUDED.ends_at,
			usage_limit = EXCLUDED.usage_limit`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (key_hash) DO UPDATE SET name = EXCLUDED.name, active = TRUE`
)

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or BACKOFFICE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or BACKOFFICE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("BACKOFFICE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or BACKOFFICE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("BACKOFFICE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedPaymentMethods(ctx, pool); err != nil {
		return errors.Wrap(err, "seed payment methods")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.SKU, p.Price, p.Image, p.StockQuantity, p.UnlimitedStock,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID.String()), slog.String("name", p.Name))
	}

	return nil
}

func seedPaymentMethods(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding payment methods")

	methods := []struct {
		id       uuid.UUID
		provider string
		isDef    bool
	}{
		{uuid.MustParse("00000000-0000-0000-0000-000000000001"), "Manual settlement", true},
		{uuid.MustParse("00000000-0000-0000-0000-000000000002"), "Cash on delivery", false},
	}

	for _, m := range methods {
		if _, err := pool.Exec(ctx, upsertPaymentMethodSQL, m.id, m.provider, m.isDef); err != nil {
			return errors.Wrapf(err, "upsert payment method %s", m.provider)
		}
		slog.Info("upserted payment method", slog.String("provider", m.provider))
	}

	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding sample coupons")

	nextYear := time.Now().AddDate(1, 0, 0)

	coupons := []struct {
		code       string
		typ        coupon.Type
		value      decimal.Decimal
		endsAt     *time.Time
		usageLimit int
	}{
		{"WELCOME10", coupon.TypePercentage, decimal.NewFromInt(10), &nextYear, 0},
		{"HALFPRICE", coupon.TypePercentage, decimal.NewFromInt(50), &nextYear, 100},
		{"FIVEOFF", coupon.TypeFixed, decimal.NewFromInt(5), nil, 0},
		{"SHIPFREE", coupon.TypeFreeShipping, decimal.Zero, nil, 0},
	}

	for _, c := range coupons {
		_, err := pool.Exec(ctx, upsertCouponSQL,
			uuid.New(), c.code, c.typ, c.value, time.Now(), c.endsAt, c.usageLimit,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}
		slog.Info("upserted coupon", slog.String("code", c.code), slog.String("type", string(c.typ)))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, upsertAPIKeySQL,
		uuid.New(), keyHash, "Default test key", []string{"create_order"},
	)
	if err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("name", "Default test key"))
	return nil
}
