// Package catalog holds the seed product list shipped with the binary.
package catalog

import (
	_ "embed"
	"fmt"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed products.yaml
var seedFile []byte

type entry struct {
	Name             string `yaml:"name"`
	Price            string `yaml:"price"`
	Image            string `yaml:"image"`
	ShortDescription string `yaml:"shortDescription"`
	Category         string `yaml:"category"`
}

// Default returns the embedded seed products.
func Default() ([]models.Product, error) {
	return Parse(seedFile)
}

// Parse decodes a YAML product list.
func Parse(data []byte) ([]models.Product, error) {
	var doc struct {
		Products []entry `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	products := make([]models.Product, 0, len(doc.Products))
	for i, e := range doc.Products {
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): invalid price %q: %w", i, e.Name, e.Price, err)
		}
		if e.Name == "" || !price.IsPositive() {
			return nil, fmt.Errorf("catalog entry %d: name and a positive price are required", i)
		}
		products = append(products, models.Product{
			Name:             e.Name,
			Price:            price,
			Image:            e.Image,
			ShortDescription: e.ShortDescription,
			Category:         e.Category,
		})
	}
	return products, nil
}
