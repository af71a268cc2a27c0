// Package seed loads a demo asset catalog from YAML.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// Catalog is the on-disk layout of a seed file.
type Catalog struct {
	Assets []AssetEntry `yaml:"assets"`
}

type AssetEntry struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Provider    string   `yaml:"provider"`
	YouTubeID   string   `yaml:"youtube_id"`
	Tags        []string `yaml:"tags"`
}

// LoadCatalog reads and decodes path. Unknown keys are rejected.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}
	return &catalog, nil
}

// ToAsset validates the entry and builds a ready catalog asset.
func (e AssetEntry) ToAsset() (*asset.Asset, error) {
	price, err := decimal.NewFromString(e.Price)
	if err != nil {
		return nil, fmt.Errorf("asset %q: invalid price %q: %w", e.Title, e.Price, err)
	}
	provider := asset.Provider(e.Provider)
	if provider == "" {
		provider = asset.ProviderHLS
	}
	a, err := asset.NewCatalogEntry(e.Title, e.Description, price, provider, e.YouTubeID, e.Tags)
	if err != nil {
		return nil, fmt.Errorf("asset %q: %w", e.Title, err)
	}
	return a, nil
}

// Seeder inserts catalog entries whose title is not yet present.
type Seeder struct {
	assets asset.Repository
	logger logger.Interface
}

func NewSeeder(assets asset.Repository, log logger.Interface) *Seeder {
	return &Seeder{assets: assets, logger: log}
}

// Seed returns the number of assets created. Re-running with the same
// catalog creates nothing.
func (s *Seeder) Seed(ctx context.Context, catalog *Catalog) (int, error) {
	existing, err := s.assets.List(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list assets: %w", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, a := range existing {
		titles[a.Title()] = true
	}

	created := 0
	for _, entry := range catalog.Assets {
		if titles[entry.Title] {
			s.logger.Debugw("seed asset already present", "title", entry.Title)
			continue
		}
		a, err := entry.ToAsset()
		if err != nil {
			return created, err
		}
		if err := s.assets.Create(ctx, a); err != nil {
			return created, fmt.Errorf("failed to create asset %q: %w", entry.Title, err)
		}
		titles[entry.Title] = true
		created++
		s.logger.Infow("seeded asset", "asset_id", a.ID(), "title", a.Title(), "price", a.Price().StringFixed(2))
	}
	return created, nil
}
