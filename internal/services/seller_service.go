package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/utils"
)

// SellerService handles seller onboarding and moderation
type SellerService struct {
	db *sql.DB
}

// NewSellerService creates a new seller service
func NewSellerService(db *sql.DB) *SellerService {
	return &SellerService{db: db}
}

const sellerColumns = `
	s.id, s.user_id, s.business_name, s.phone, s.email, s.is_approved, s.approval_date,
	s.approved_by, s.rejection_reason, s.is_active, s.created_at, s.updated_at`

func scanSeller(row rowScanner, extra ...interface{}) (*models.Seller, error) {
	var s models.Seller
	var approvalDate sql.NullTime
	var approvedBy, rejectionReason sql.NullString

	dest := []interface{}{
		&s.ID, &s.UserID, &s.BusinessName, &s.Phone, &s.Email, &s.IsApproved, &approvalDate,
		&approvedBy, &rejectionReason, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if approvalDate.Valid {
		s.ApprovalDate = &approvalDate.Time
	}
	if approvedBy.Valid {
		s.ApprovedBy = &approvedBy.String
	}
	if rejectionReason.Valid {
		s.RejectionReason = &rejectionReason.String
	}
	return &s, nil
}

func getSellerByUserID(ctx context.Context, q querier, userID string) (*models.Seller, error) {
	query := "SELECT " + sellerColumns + " FROM sellers s WHERE s.user_id = ?"
	seller, err := scanSeller(q.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound(MsgSellerNotFound)
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return seller, nil
}

func getSellerByID(ctx context.Context, q querier, id string) (*models.Seller, error) {
	query := "SELECT " + sellerColumns + " FROM sellers s WHERE s.id = ?"
	seller, err := scanSeller(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound(MsgSellerNotFound)
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return seller, nil
}

// Register opens a pending seller profile for the caller
func (s *SellerService) Register(ctx context.Context, userID string, registration *models.SellerRegistration) (*models.Seller, error) {
	businessName := utils.SanitizeString(registration.BusinessName)
	phone := strings.TrimSpace(registration.Phone)
	email := utils.NormalizeEmail(registration.Email)
	if businessName == "" || phone == "" || email == "" {
		return nil, BadRequest("Business name, phone and email are required")
	}
	if !utils.IsValidEmail(email) {
		return nil, BadRequest("Invalid email address")
	}

	if _, err := getSellerByUserID(ctx, s.db, userID); err == nil {
		return nil, Conflict("Seller profile already exists")
	} else if KindOf(err) != KindNotFound {
		return nil, err
	}

	now := utils.Now()
	seller := &models.Seller{
		ID:           uuid.New().String(),
		UserID:       userID,
		BusinessName: businessName,
		Phone:        phone,
		Email:        email,
		IsApproved:   false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO sellers (id, user_id, business_name, phone, email, is_approved, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		seller.ID, seller.UserID, seller.BusinessName, seller.Phone, seller.Email,
		seller.IsApproved, seller.IsActive, seller.CreatedAt, seller.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}

	log.Printf("🏪 Seller profile %s registered for user %s (pending approval)", seller.ID, userID)
	return seller, nil
}

// GetMine returns the caller's seller profile
func (s *SellerService) GetMine(ctx context.Context, userID string) (*models.Seller, error) {
	return getSellerByUserID(ctx, s.db, userID)
}

// List returns every seller with the owning user's name and email
func (s *SellerService) List(ctx context.Context) ([]*models.Seller, error) {
	query := "SELECT " + sellerColumns + `, u.id, u.name, u.email
		FROM sellers s LEFT JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC, s.rowid DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sellers: %w", err)
	}
	defer rows.Close()

	sellers := []*models.Seller{}
	for rows.Next() {
		var uid, name, email sql.NullString
		seller, err := scanSeller(rows, &uid, &name, &email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		if uid.Valid {
			seller.User = &models.UserSummary{ID: uid.String, Name: name.String, Email: email.String}
		}
		sellers = append(sellers, seller)
	}
	return sellers, rows.Err()
}

// Approve marks the seller approved and promotes the owning user to an active
// seller account. Both rows change in one transaction.
func (s *SellerService) Approve(ctx context.Context, sellerID, adminID string) (*models.Seller, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seller, err := getSellerByID(ctx, tx, sellerID)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE sellers
		SET is_approved = TRUE, approval_date = ?, approved_by = ?, rejection_reason = NULL, updated_at = ?
		WHERE id = ?
	`, now, adminID, now, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve seller: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE users SET role = ?, is_active = TRUE, updated_at = ? WHERE id = ?
	`, models.UserRoleSeller, now, seller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to promote seller user: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, NotFound(MsgUserNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seller approval: %w", err)
	}

	seller.IsApproved = true
	seller.ApprovalDate = &now
	seller.ApprovedBy = &adminID
	seller.RejectionReason = nil
	seller.UpdatedAt = now

	log.Printf("✅ Seller %s approved by %s", sellerID, adminID)
	return seller, nil
}

// Reject marks the seller unapproved with a reason; the user account is untouched
func (s *SellerService) Reject(ctx context.Context, sellerID, adminID, reason string) (*models.Seller, error) {
	seller, err := getSellerByID(ctx, s.db, sellerID)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = MsgDefaultRejectReason
	}

	now := utils.Now()
	_, err = s.db.ExecContext(ctx, `
		UPDATE sellers
		SET is_approved = FALSE, rejection_reason = ?, approval_date = NULL, approved_by = ?, updated_at = ?
		WHERE id = ?
	`, reason, adminID, now, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reject seller: %w", err)
	}

	seller.IsApproved = false
	seller.RejectionReason = &reason
	seller.ApprovalDate = nil
	seller.ApprovedBy = &adminID
	seller.UpdatedAt = now

	log.Printf("🚫 Seller %s rejected by %s: %s", sellerID, adminID, reason)
	return seller, nil
}
