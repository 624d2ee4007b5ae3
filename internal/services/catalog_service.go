package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/clashpoint/deltacoin/internal/models"
)

// CatalogService serves the purchasable shop items. The hold engine
// checks the SKU here at authorization time; the hold itself freezes
// the amount the shop quoted, so later price changes never move it.
type CatalogService struct {
	db *sql.DB
}

func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) GetItem(ctx context.Context, sku string) (*models.ShopItem, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidTransaction)
	}

	var item models.ShopItem
	err := s.db.QueryRowContext(ctx, `
		SELECT sku, name, price, active, created_at, updated_at
		FROM shop_items
		WHERE sku = $1`, sku).
		Scan(&item.SKU, &item.Name, &item.Price, &item.Active, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, sku)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CatalogService) ListItems(ctx context.Context, includeInactive bool) ([]models.ShopItem, error) {
	query := `
		SELECT sku, name, price, active, created_at, updated_at
		FROM shop_items`
	if !includeInactive {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY sku`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ShopItem{}
	for rows.Next() {
		var item models.ShopItem
		if err := rows.Scan(&item.SKU, &item.Name, &item.Price, &item.Active, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertItem creates or replaces a catalog entry. Price changes do not
// touch holds already authorized at the old price.
func (s *CatalogService) UpsertItem(ctx context.Context, item *models.ShopItem) (*models.ShopItem, error) {
	if item.SKU == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrInvalidTransaction)
	}
	if item.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTransaction)
	}
	if item.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive, got %d", ErrInvalidAmount, item.Price)
	}

	var saved models.ShopItem
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO shop_items (sku, name, price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (sku) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, active = EXCLUDED.active, updated_at = NOW()
		RETURNING sku, name, price, active, created_at, updated_at`,
		item.SKU, item.Name, item.Price, item.Active).
		Scan(&saved.SKU, &saved.Name, &saved.Price, &saved.Active, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, err
	}

	log.Printf("[CatalogService] upserted item %s price=%d active=%t", saved.SKU, saved.Price, saved.Active)
	return &saved, nil
}

// SetItemActive toggles purchasability without touching price or name.
func (s *CatalogService) SetItemActive(ctx context.Context, sku string, active bool) error {
	if sku == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalidTransaction)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE shop_items SET active = $1, updated_at = NOW() WHERE sku = $2`, active, sku)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, sku)
	}
	return nil
}
