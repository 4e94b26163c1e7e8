// Command seed-db populates a fresh database with the starter catalog,
// store settings, content pages and an admin API key. Safe to re-run:
// everything is upserted.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/wickandwax/storefront/internal/domain/auth"
	"github.com/wickandwax/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or SHOP_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SHOP_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SHOP_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or SHOP_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SHOP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Catalog first: products reference categories, variants reference
	// products.
	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	// The remaining tables are independent of each other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return errors.Wrap(seedSettings(gctx, pool), "seed settings") })
	g.Go(func() error { return errors.Wrap(seedPages(gctx, pool), "seed pages") })
	g.Go(func() error { return errors.Wrap(seedAPIKey(gctx, pool, apiKey, pepper), "seed api key") })
	return g.Wait()
}

const upsertCategorySQL = `
INSERT INTO categories (id, name, slug, description)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET name = $2, slug = $3, description = $4`

const upsertProductSQL = `
INSERT INTO products (id, name, description, price, stock, has_scent_options, has_color_options, image_url, category_id, featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
ON CONFLICT (id) DO UPDATE SET
	name = $2, description = $3, price = $4, stock = $5,
	has_scent_options = $6, has_color_options = $7,
	image_url = $8, category_id = NULLIF($9, ''), featured = $10`

const upsertScentSQL = `
INSERT INTO scents (id, product_id, name)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET product_id = $2, name = $3`

const upsertColorSQL = `
INSERT INTO colors (id, product_id, name, hex)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET product_id = $2, name = $3, hex = $4`

type seedProduct struct {
	id, name, description string
	price                 string
	stock                 int
	scents                []string
	colors                [][2]string
	imageURL              string
	categoryID            string
	featured              bool
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	categories := [][4]string{
		{"cat-pillar", "Pillar Candles", "pillar-candles", "Free-standing candles in classic shapes"},
		{"cat-jar", "Jar Candles", "jar-candles", "Long-burning candles in reusable glass jars"},
		{"cat-taper", "Taper Candles", "taper-candles", "Slim dinner candles for candlesticks"},
		{"cat-gift", "Gift Sets", "gift-sets", "Curated bundles ready for gifting"},
	}
	for _, c := range categories {
		if _, err := pool.Exec(ctx, upsertCategorySQL, c[0], c[1], c[2], c[3]); err != nil {
			return errors.Wrapf(err, "category %s", c[0])
		}
	}
	slog.Info("upserted categories", slog.Int("count", len(categories)))

	products := []seedProduct{
		{
			id: "prod-lavender-jar", name: "Lavender Fields Jar",
			description: "Hand-poured soy wax with French lavender essential oil.",
			price:       "18.50", stock: 40,
			scents:     []string{"Lavender", "Lavender Vanilla"},
			imageURL:   "products/lavender-jar.jpg",
			categoryID: "cat-jar", featured: true,
		},
		{
			id: "prod-vanilla-pillar", name: "Vanilla Bean Pillar",
			description: "A slow-burning pillar with warm vanilla bean fragrance.",
			price:       "14.00", stock: 60,
			scents:     []string{"Vanilla Bean", "Vanilla Oak"},
			colors:     [][2]string{{"Cream", "#F5F0E1"}, {"Amber", "#C68B40"}},
			imageURL:   "products/vanilla-pillar.jpg",
			categoryID: "cat-pillar", featured: true,
		},
		{
			id: "prod-beeswax-taper", name: "Beeswax Taper Pair",
			description: "Two dripless tapers rolled from local beeswax.",
			price:       "9.75", stock: 120,
			colors:     [][2]string{{"Natural", "#E8B64C"}, {"Ivory", "#FFFFF0"}},
			imageURL:   "products/beeswax-taper.jpg",
			categoryID: "cat-taper",
		},
		{
			id: "prod-cedar-jar", name: "Cedar & Sage Jar",
			description: "Earthy cedarwood balanced with fresh sage.",
			price:       "19.25", stock: 35,
			scents:     []string{"Cedar Sage", "Cedar Citrus"},
			imageURL:   "products/cedar-jar.jpg",
			categoryID: "cat-jar",
		},
		{
			id: "prod-starter-set", name: "Candle Lover Starter Set",
			description: "Three mini jars sampling our bestselling scents.",
			price:       "32.00", stock: 25,
			imageURL:   "products/starter-set.jpg",
			categoryID: "cat-gift", featured: true,
		},
	}
	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.id, p.name, p.description, p.price, p.stock,
			len(p.scents) > 0, len(p.colors) > 0,
			p.imageURL, p.categoryID, p.featured,
		); err != nil {
			return errors.Wrapf(err, "product %s", p.id)
		}
		for i, name := range p.scents {
			id := p.id + "-scent-" + name
			if _, err := pool.Exec(ctx, upsertScentSQL, id, p.id, name); err != nil {
				return errors.Wrapf(err, "scent %d of %s", i, p.id)
			}
		}
		for i, c := range p.colors {
			id := p.id + "-color-" + c[0]
			if _, err := pool.Exec(ctx, upsertColorSQL, id, p.id, c[0], c[1]); err != nil {
				return errors.Wrapf(err, "color %d of %s", i, p.id)
			}
		}
		slog.Info("upserted product", slog.String("id", p.id), slog.String("name", p.name))
	}

	return nil
}

const upsertSettingSQL = `
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = $2`

func seedSettings(ctx context.Context, pool *pgxpool.Pool) error {
	defaults := map[string]string{
		"shippingCost":          "5.00",
		"freeShippingThreshold": "50.00",
		"storeName":             "Wick & Wax",
		"tagline":               "Hand-poured candles, small batches",
		"currency":              "USD",
		"contactEmail":          "hello@wickandwax.example",
	}
	for key, value := range defaults {
		if _, err := pool.Exec(ctx, upsertSettingSQL, key, value); err != nil {
			return errors.Wrapf(err, "setting %s", key)
		}
	}
	slog.Info("upserted settings", slog.Int("count", len(defaults)))
	return nil
}

const upsertPageSQL = `
INSERT INTO pages (type, title, content, updated_at) VALUES ($1, $2, $3, now())
ON CONFLICT (type) DO UPDATE SET title = $2, content = $3, updated_at = now()`

func seedPages(ctx context.Context, pool *pgxpool.Pool) error {
	pages := [][3]string{
		{"about", "About Us", "Every candle is poured by hand in our studio."},
		{"contact", "Get in Touch", "Questions about an order? Write to hello@wickandwax.example."},
		{"shipping-returns", "Shipping & Returns", "Orders ship within 2 business days. Unburned candles can be returned within 30 days."},
	}
	for _, p := range pages {
		if _, err := pool.Exec(ctx, upsertPageSQL, p[0], p[1], p[2]); err != nil {
			return errors.Wrapf(err, "page %s", p[0])
		}
	}
	slog.Info("upserted pages", slog.Int("count", len(pages)))
	return nil
}

const upsertAPIKeySQL = `
INSERT INTO api_keys (id, key_hash, name, scopes, active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET key_hash = $2, name = $3, scopes = $4, active = $5`

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	hash := auth.HashKey(apiKey, []byte(pepper))
	if _, err := pool.Exec(ctx, upsertAPIKeySQL,
		"default", hash, "Default admin key", []string{auth.ScopeAdmin}, true,
	); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}
	slog.Info("upserted API key", slog.String("id", "default"))
	return nil
}
