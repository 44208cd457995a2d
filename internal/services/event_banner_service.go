package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/utils"
)

// EventBannerService manages the single storefront event banner
type EventBannerService struct {
	db *sql.DB
}

// NewEventBannerService creates a new event banner service
func NewEventBannerService(db *sql.DB) *EventBannerService {
	return &EventBannerService{db: db}
}

func getBanner(ctx context.Context, q querier) (*models.EventBanner, error) {
	var b models.EventBanner
	var endDate sql.NullTime
	var productID sql.NullString

	err := q.QueryRowContext(ctx, `
		SELECT id, title, description, end_date, product_id, is_active, created_at, updated_at
		FROM event_banners WHERE singleton = 1
	`).Scan(&b.ID, &b.Title, &b.Description, &endDate, &productID, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event banner: %w", err)
	}

	if endDate.Valid {
		b.EndDate = &endDate.Time
	}
	if productID.Valid {
		b.ProductID = &productID.String
	}
	return &b, nil
}

// setEventFlag marks or clears a product as the event product
func setEventFlag(ctx context.Context, q querier, productID string, value bool) error {
	_, err := q.ExecContext(ctx,
		"UPDATE products SET is_event_product = ?, updated_at = ? WHERE id = ?",
		value, utils.Now(), productID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event product: %w", err)
	}
	return nil
}

// Upsert creates the banner or replaces the existing one. The linked product is
// flagged as the event product and a previously linked product is released.
func (s *EventBannerService) Upsert(ctx context.Context, input *models.EventBannerInput) (*models.EventBanner, error) {
	title := utils.SanitizeString(input.Title)
	if title == "" {
		return nil, BadRequest("Title is required")
	}

	var productID *string
	if input.ProductID != nil && strings.TrimSpace(*input.ProductID) != "" {
		id := strings.TrimSpace(*input.ProductID)
		productID = &id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if productID != nil {
		if _, err := getProduct(ctx, tx, *productID); err != nil {
			return nil, err
		}
	}

	previous, err := getBanner(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO event_banners (id, singleton, title, description, end_date, product_id, is_active, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?, ?, TRUE, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			end_date = excluded.end_date,
			product_id = excluded.product_id,
			is_active = TRUE,
			updated_at = excluded.updated_at
	`, uuid.New().String(), title, strings.TrimSpace(input.Description), input.EndDate, productID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save event banner: %w", err)
	}

	if previous != nil && previous.ProductID != nil && (productID == nil || *previous.ProductID != *productID) {
		if err := setEventFlag(ctx, tx, *previous.ProductID, false); err != nil {
			return nil, err
		}
	}
	if productID != nil {
		if err := setEventFlag(ctx, tx, *productID, true); err != nil {
			return nil, err
		}
	}

	banner, err := getBanner(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event banner: %w", err)
	}

	log.Printf("🎉 Event banner %q saved", title)
	return banner, nil
}

// Delete removes the banner and releases its product
func (s *EventBannerService) Delete(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	banner, err := getBanner(ctx, tx)
	if err != nil {
		return err
	}
	if banner == nil {
		return NotFound("Event banner not found")
	}

	if banner.ProductID != nil {
		if err := setEventFlag(ctx, tx, *banner.ProductID, false); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM event_banners WHERE singleton = 1"); err != nil {
		return fmt.Errorf("failed to delete event banner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event banner delete: %w", err)
	}
	log.Println("🧹 Event banner removed")
	return nil
}

// GetActive returns the active, unexpired banner with its product, or nil
func (s *EventBannerService) GetActive(ctx context.Context, now time.Time) (*models.EventBanner, error) {
	banner, err := getBanner(ctx, s.db)
	if err != nil || banner == nil {
		return nil, err
	}
	if !banner.IsActive || (banner.EndDate != nil && banner.EndDate.Before(now)) {
		return nil, nil
	}

	if banner.ProductID != nil {
		product, err := getProduct(ctx, s.db, *banner.ProductID)
		switch {
		case err == nil:
			banner.Product = product
		case KindOf(err) != KindNotFound:
			return nil, err
		}
	}
	return banner, nil
}
