// Package main implements a standalone seed script that populates the
// bakeshop database with realistic demo data: categories, products with
// weight variants, a couple of in-effect offers, and approved reviews.
// It writes directly over SQL so it can run before the server does.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type variantDef struct {
	Weight string `json:"weight"`
	Price  int64  `json:"price_cents"`
}

type productDef struct {
	name         string
	slug         string
	description  string
	categorySlug string
	price        int64
	stock        int
	images       []string
	variants     []variantDef
}

type offerDef struct {
	productSlug     string
	variantKey      string
	discountedPrice int64
	days            int
}

type reviewDef struct {
	productSlug string
	userName    string
	rating      int
	comment     string
}

var categories = []struct {
	name string
	slug string
	desc string
}{
	{"Cakes", "cakes", "Layer cakes, loaf cakes and celebration cakes."},
	{"Pastries", "pastries", "Croissants, tarts and individual sweets."},
	{"Breads", "breads", "Sourdough, baguettes and sandwich loaves."},
}

var products = []productDef{
	{
		name:         "Chocolate Fudge Cake",
		slug:         "chocolate-fudge-cake",
		description:  "Rich dark chocolate layers with a fudge ganache.",
		categorySlug: "cakes",
		price:        1500,
		stock:        12,
		images:       []string{"https://cdn.example.com/fudge.jpg"},
		variants: []variantDef{
			{Weight: "500G", Price: 900},
			{Weight: "1KG", Price: 1500},
			{Weight: "2KG", Price: 2800},
		},
	},
	{
		name:         "Red Velvet Cake",
		slug:         "red-velvet-cake",
		description:  "Classic red velvet with cream cheese frosting.",
		categorySlug: "cakes",
		price:        1700,
		stock:        8,
		images:       []string{"https://cdn.example.com/red-velvet.jpg"},
		variants: []variantDef{
			{Weight: "1KG", Price: 1700},
			{Weight: "2KG", Price: 3200},
		},
	},
	{
		name:         "Butter Croissant Box",
		slug:         "butter-croissant-box",
		description:  "Six flaky butter croissants, baked each morning.",
		categorySlug: "pastries",
		price:        750,
		stock:        30,
		images:       []string{"https://cdn.example.com/croissants.jpg"},
	},
	{
		name:         "Creme Brulee Tart",
		slug:         "creme-brulee-tart",
		description:  "Vanilla custard tart with a caramelized top.",
		categorySlug: "pastries",
		price:        1200,
		stock:        10,
		images:       []string{"https://cdn.example.com/brulee-tart.jpg"},
	},
	{
		name:         "Country Sourdough",
		slug:         "country-sourdough",
		description:  "Naturally leavened, 36 hour fermentation.",
		categorySlug: "breads",
		price:        650,
		stock:        20,
		images:       []string{"https://cdn.example.com/sourdough.jpg"},
		variants: []variantDef{
			{Weight: "500G", Price: 450},
			{Weight: "1KG", Price: 650},
		},
	},
}

var offers = []offerDef{
	{productSlug: "chocolate-fudge-cake", variantKey: "1KG", discountedPrice: 1200, days: 14},
	{productSlug: "butter-croissant-box", variantKey: "", discountedPrice: 600, days: 7},
}

var reviews = []reviewDef{
	{productSlug: "chocolate-fudge-cake", userName: "Wanjiru M.", rating: 5, comment: "Moist and not too sweet. Ordered twice already."},
	{productSlug: "chocolate-fudge-cake", userName: "Brian O.", rating: 4, comment: "Great cake, delivery was quick."},
	{productSlug: "country-sourdough", userName: "Amina K.", rating: 5, comment: "Proper crust. Best sourdough in town."},
}

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("seed: ")

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "bakeshop"),
		getEnv("POSTGRES_PASSWORD", "bakeshop_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("BAKESHOP_DB_NAME", "bakeshop"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := seed(ctx, pool); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("done: %d categories, %d products, %d offers, %d reviews",
		len(categories), len(products), len(offers), len(reviews))
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (id, name, slug, description)
			VALUES (gen_random_uuid(), $1, $2, $3)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			c.name, c.slug, c.desc,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.slug, err)
		}
		categoryIDs[c.slug] = id
		log.Printf("category %s", c.slug)
	}

	productIDs := make(map[string]string, len(products))
	for _, p := range products {
		images, err := json.Marshal(p.images)
		if err != nil {
			return fmt.Errorf("marshal images for %s: %w", p.slug, err)
		}
		variants := []byte("[]")
		if p.variants != nil {
			if variants, err = json.Marshal(p.variants); err != nil {
				return fmt.Errorf("marshal variants for %s: %w", p.slug, err)
			}
		}

		var id string
		err = pool.QueryRow(ctx, `
			INSERT INTO products (id, name, slug, description, category_id, price_cents, stock, images, variants)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (slug) DO UPDATE SET price_cents = EXCLUDED.price_cents, stock = EXCLUDED.stock
			RETURNING id`,
			p.name, p.slug, p.description, categoryIDs[p.categorySlug], p.price, p.stock, images, variants,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.slug, err)
		}
		productIDs[p.slug] = id
		log.Printf("product %s", p.slug)
	}

	now := time.Now().UTC()
	for _, o := range offers {
		_, err := pool.Exec(ctx, `
			INSERT INTO offers (id, product_id, variant_key, discounted_price_cents, start_date, end_date, is_active)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, TRUE)`,
			productIDs[o.productSlug], o.variantKey, o.discountedPrice,
			now.Add(-time.Hour), now.AddDate(0, 0, o.days),
		)
		if err != nil {
			// The exclusion constraint rejects re-runs; existing offers stay as they are.
			log.Printf("offer for %s skipped: %v", o.productSlug, err)
			continue
		}
		log.Printf("offer for %s", o.productSlug)
	}

	for _, r := range reviews {
		_, err := pool.Exec(ctx, `
			INSERT INTO reviews (id, product_id, user_id, user_name, rating, comment, status)
			VALUES (gen_random_uuid(), $1, gen_random_uuid(), $2, $3, $4, 'approved')
			ON CONFLICT (product_id, user_id) DO NOTHING`,
			productIDs[r.productSlug], r.userName, r.rating, r.comment,
		)
		if err != nil {
			return fmt.Errorf("seed review for %s: %w", r.productSlug, err)
		}
	}

	for slug, id := range productIDs {
		_, err := pool.Exec(ctx, `
			UPDATE products p SET
				rating = COALESCE((SELECT ROUND(AVG(rating), 2) FROM reviews WHERE product_id = $1 AND status = 'approved'), 0),
				review_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $1 AND status = 'approved')
			WHERE p.id = $1`, id)
		if err != nil {
			return fmt.Errorf("refresh rating for %s: %w", slug, err)
		}
	}

	return nil
}
