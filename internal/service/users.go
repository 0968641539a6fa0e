package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/makerspace-access/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserParams carries the caller-supplied user fields. Enum fields arrive
// pre-validated by the handler; empty optional fields keep their defaults.
type UserParams struct {
	Username          string
	FirstName         string
	LastName          string
	Password          string
	Role              models.UserRole
	Status            models.UserStatus
	EmergeAccessLevel models.EmergeAccessLevel
}

// CreateUser creates a user and writes the first user edit log row in the
// same transaction.
func (s *AssignmentService) CreateUser(ctx context.Context, actorID string, p UserParams) (*models.User, error) {
	if p.Username == "" || p.Password == "" {
		return nil, fmt.Errorf("%w: missing username or password", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:            p.Username,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		PasswordHash:        string(hash),
		Role:                p.Role,
		Status:              p.Status,
		EmergeAccessLevel:   p.EmergeAccessLevel,
		LastUpdatedByUserID: actorID,
	}
	if u.Role == "" {
		u.Role = models.RoleUnverified
	}
	if u.Status == "" {
		u.Status = models.UserActive
	}
	if u.EmergeAccessLevel == "" {
		u.EmergeAccessLevel = models.EmergeBusinessHours
	}

	var created *models.User
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = s.users.WithTx(tx).Create(ctx, u)
		if err != nil {
			return fmt.Errorf("create user %s: %w", p.Username, err)
		}
		return s.appendUserEditLog(ctx, tx, created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateUser rewrites a user's editable fields. When the new status is
// anything other than active, every card the user holds drops to inactive
// with one log row per card — same cascade as archiving, but assignments
// stay in place.
func (s *AssignmentService) UpdateUser(ctx context.Context, actorID, userID string, p UserParams) (*models.User, error) {
	if p.Username == "" {
		return nil, fmt.Errorf("%w: missing username", ErrValidation)
	}

	var updated *models.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		u, err := s.users.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}

		u.Username = p.Username
		u.LastUpdatedByUserID = actorID
		if p.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u.PasswordHash = string(hash)
		}
		if p.FirstName != "" {
			u.FirstName = p.FirstName
		}
		if p.LastName != "" {
			u.LastName = p.LastName
		}
		if p.Role != "" {
			u.Role = p.Role
		}
		if p.Status != "" {
			u.Status = p.Status
		}
		if p.EmergeAccessLevel != "" {
			u.EmergeAccessLevel = p.EmergeAccessLevel
		}

		updated, err = s.users.WithTx(tx).Update(ctx, u)
		if err != nil {
			return fmt.Errorf("update user %s: %w", userID, err)
		}

		if updated.Status != models.UserActive {
			if err := s.deactivateAssignedCards(ctx, tx, actorID, userID, true); err != nil {
				return err
			}
		}

		return s.appendUserEditLog(ctx, tx, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ArchiveUser soft-deletes a user: status becomes archived, every held card
// drops to inactive with one log row each, and all card and device
// assignments are removed. The join-row deletions are not logged per row —
// the archive's own edit log entry is the record.
func (s *AssignmentService) ArchiveUser(ctx context.Context, actorID, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user id", ErrValidation)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		u, err := s.users.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}

		if err := s.deactivateAssignedCards(ctx, tx, actorID, userID, false); err != nil {
			return err
		}

		if err := s.userCards.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		if err := s.userDevices.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
			return err
		}

		u.Status = models.UserArchived
		u.LastUpdatedByUserID = actorID
		archived, err := s.users.WithTx(tx).Update(ctx, u)
		if err != nil {
			return err
		}

		return s.appendUserEditLog(ctx, tx, archived)
	})
}

func (s *AssignmentService) appendUserEditLog(ctx context.Context, tx *sql.Tx, u *models.User) error {
	return s.logs.WithTx(tx).AppendUserEditLog(ctx, &models.UserEditLog{
		UserID:            u.ID,
		Role:              u.Role,
		Status:            u.Status,
		EmergeAccessLevel: u.EmergeAccessLevel,
		UpdatedByUserID:   u.LastUpdatedByUserID,
	})
}
