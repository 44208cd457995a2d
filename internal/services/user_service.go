package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/utils"
)

// UserService handles user-related business logic
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new user service
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, name, email, password_hash, role, is_active, created_at, updated_at"

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := models.ParseUserRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Role = parsed
	return &u, nil
}

func (s *UserService) insertUser(ctx context.Context, name, email, password string, role models.UserRole) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := utils.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateUser registers a customer account
func (s *UserService) CreateUser(ctx context.Context, registration *models.UserRegistration) (*models.User, error) {
	name := utils.SanitizeString(registration.Name)
	email := utils.NormalizeEmail(registration.Email)
	if name == "" || email == "" || registration.Password == "" {
		return nil, BadRequest("Name, email and password are required")
	}
	if !utils.IsValidEmail(email) {
		return nil, BadRequest("Invalid email address")
	}
	if len(registration.Password) < 8 {
		return nil, BadRequest("Password must be at least 8 characters long")
	}

	exists, err := s.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, Conflict("User with this email already exists")
	}

	user, err := s.insertUser(ctx, name, email, registration.Password, models.UserRoleCustomer)
	if err != nil {
		return nil, err
	}

	log.Printf("👤 User registered: %s", user.Email)
	return user, nil
}

// AuthenticateUser checks credentials; inactive accounts cannot sign in
func (s *UserService) AuthenticateUser(ctx context.Context, login *models.UserLogin) (*models.User, error) {
	email := utils.NormalizeEmail(login.Email)
	user, err := s.getUser(ctx, "email = ?", email)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, Unauthorized("Invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(login.Password)); err != nil {
		return nil, Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return nil, Forbidden("Account is deactivated")
	}
	return user, nil
}

func (s *UserService) getUser(ctx context.Context, where string, args ...interface{}) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound(MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", userID)
}

// EmailExists checks if an account already uses the email
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// SeedAdmin creates the bootstrap admin account when no user owns the email yet
func (s *UserService) SeedAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	exists, err := s.EmailExists(ctx, email)
	if err != nil || exists {
		return false, err
	}

	if _, err := s.insertUser(ctx, name, email, password, models.UserRoleAdmin); err != nil {
		return false, err
	}
	log.Printf("🔑 Admin account seeded: %s", email)
	return true, nil
}

// ListUsers returns every account, newest first
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// AdminUpdateUser changes name, email, role or active state of an account
func (s *UserService) AdminUpdateUser(ctx context.Context, userID string, update *models.UserAdminUpdate) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := utils.SanitizeString(*update.Name)
		if name == "" {
			return nil, BadRequest("Name cannot be empty")
		}
		user.Name = name
	}
	if update.Email != nil {
		email := utils.NormalizeEmail(*update.Email)
		if !utils.IsValidEmail(email) {
			return nil, BadRequest("Invalid email address")
		}
		if email != user.Email {
			exists, err := s.EmailExists(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, Conflict("User with this email already exists")
			}
		}
		user.Email = email
	}
	if update.Role != nil {
		role, err := models.ParseUserRole(*update.Role)
		if err != nil {
			return nil, BadRequest("Invalid role: " + strings.TrimSpace(*update.Role))
		}
		user.Role = role
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	user.UpdatedAt = utils.Now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ?, role = ?, is_active = ?, updated_at = ? WHERE id = ?
	`, user.Name, user.Email, user.Role, user.IsActive, user.UpdatedAt, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return NotFound(MsgUserNotFound)
	}
	log.Printf("🗑️ User %s deleted", userID)
	return nil
}
