// Command seed populates the catalog with demo categories and listings.
// It connects straight to the database through the SDK, so the API server
// does not need to be running.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	searchd "github.com/openlistings/searchd/pkg/sdk"
)

type seedCategory struct {
	info         searchd.CategoryInfo
	location     string
	basePrice    float64
	productName  string
	productCount int
}

func demoCatalog() []seedCategory {
	return []seedCategory{
		{
			info: searchd.CategoryInfo{
				Name: "Televisions",
				Slug: "televisions",
				Attributes: []searchd.AttributeInfo{
					{Key: "screenSize", Label: "Screen Size", Type: searchd.AttributeString,
						Options: []string{`32"`, `40"`, `50"`, `60"+`}},
					{Key: "brand", Label: "Brand", Type: searchd.AttributeString,
						Options: []string{"Sony", "Samsung", "LG", "Panasonic"}},
					{Key: "smartTV", Label: "Smart TV", Type: searchd.AttributeBoolean},
				},
			},
			location:     "New York",
			basePrice:    300,
			productName:  "TV Model",
			productCount: 15,
		},
		{
			info: searchd.CategoryInfo{
				Name: "Running Shoes",
				Slug: "running-shoes",
				Attributes: []searchd.AttributeInfo{
					{Key: "size", Label: "Size", Type: searchd.AttributeString,
						Options: []string{"7", "8", "9", "10", "11", "12"}},
					{Key: "colour", Label: "Colour", Type: searchd.AttributeString,
						Options: []string{"red", "blue", "black", "white"}},
					{Key: "brand", Label: "Brand", Type: searchd.AttributeString,
						Options: []string{"Nike", "Adidas", "Puma"}},
				},
			},
			location:     "Los Angeles",
			basePrice:    100,
			productName:  "Running Shoe",
			productCount: 15,
		},
		{
			info: searchd.CategoryInfo{
				Name: "Smartphones",
				Slug: "smartphones",
				Attributes: []searchd.AttributeInfo{
					{Key: "storage", Label: "Storage", Type: searchd.AttributeString,
						Options: []string{"64GB", "128GB", "256GB", "512GB"}},
					{Key: "brand", Label: "Brand", Type: searchd.AttributeString,
						Options: []string{"Apple", "Samsung", "OnePlus"}},
					{Key: "5G", Label: "5G Capable", Type: searchd.AttributeBoolean},
				},
			},
			location:     "San Francisco",
			basePrice:    500,
			productName:  "Smartphone Model",
			productCount: 10,
		},
	}
}

// buildListings generates productCount listings per category, cycling
// through option values and alternating booleans.
func buildListings(cat seedCategory) []searchd.Listing {
	listings := make([]searchd.Listing, 0, cat.productCount)
	for j := 0; j < cat.productCount; j++ {
		attrs := make(map[string]any, len(cat.info.Attributes))
		for _, def := range cat.info.Attributes {
			switch {
			case def.Type == searchd.AttributeBoolean:
				attrs[def.Key] = j%2 == 0
			case len(def.Options) > 0:
				attrs[def.Key] = def.Options[j%len(def.Options)]
			}
		}

		listings = append(listings, searchd.Listing{
			Title:       fmt.Sprintf("%s %d", cat.productName, j+1),
			Description: fmt.Sprintf("Description for %s %d", cat.productName, j+1),
			Price:       cat.basePrice + float64(j)*10,
			Location:    cat.location,
			Category:    cat.info.Slug,
			Attributes:  attrs,
		})
	}
	return listings
}

func main() {
	var (
		addr     = flag.String("addr", envOr("REDIS_ADDR", "localhost:6379"), "database address")
		password = flag.String("password", os.Getenv("REDIS_PASSWORD"), "database password")
		prefix   = flag.String("prefix", "listings:", "key prefix shared with the API server")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall seeding timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := searchd.New(ctx,
		searchd.WithRedis(*addr, *password),
		searchd.WithKeyPrefix(*prefix),
		searchd.WithLogger(logger),
	)
	if err != nil {
		logger.Error("connect failed", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	for _, cat := range demoCatalog() {
		if _, err := client.Categories().Ensure(ctx, cat.info); err != nil {
			logger.Error("seed category failed", "slug", cat.info.Slug, "error", err)
			os.Exit(1)
		}

		stored, err := client.Listings().BatchUpsert(ctx, buildListings(cat))
		if err != nil {
			logger.Error("seed listings failed", "slug", cat.info.Slug, "error", err)
			os.Exit(1)
		}
		logger.Info("seeded category", "slug", cat.info.Slug, "listings", len(stored))
	}

	logger.Info("seed complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
