package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/makerspace-access/internal/models"
	"github.com/crucial707/makerspace-access/internal/repo"
)

// AssignmentService mediates card/user and device/user bindings. It is the
// only writer of assignment state: every mutation and its audit rows run in
// a single transaction, and cascades (archive, status changes) are plain
// sequential calls inside that transaction rather than triggers.
//
// actorID is always the authenticated operator performing the change, passed
// explicitly on every call.
type AssignmentService struct {
	db          *sql.DB
	users       *repo.UserRepo
	cards       *repo.AccessCardRepo
	userCards   *repo.UserAccessCardRepo
	devices     *repo.DeviceRepo
	userDevices *repo.UserDeviceRepo
	logs        *repo.AuditLogRepo
}

func NewAssignmentService(db *sql.DB) *AssignmentService {
	return &AssignmentService{
		db:          db,
		users:       repo.NewUserRepo(db),
		cards:       repo.NewAccessCardRepo(db),
		userCards:   repo.NewUserAccessCardRepo(db),
		devices:     repo.NewDeviceRepo(db),
		userDevices: repo.NewUserDeviceRepo(db),
		logs:        repo.NewAuditLogRepo(db),
	}
}

// withTx runs fn inside a transaction, rolling back on any error.
func (s *AssignmentService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// AssignCard binds a card to a user. Both must exist and be active, and the
// card must not already be assigned. On success one assignment row is created
// and one card log row snapshots the new state.
func (s *AssignmentService) AssignCard(ctx context.Context, actorID, cardID, userID string) (*models.UserAccessCard, error) {
	if actorID == "" || cardID == "" || userID == "" {
		return nil, fmt.Errorf("%w: missing actor, card or user id", ErrValidation)
	}

	var assignment *models.UserAccessCard
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		card, err := s.cards.WithTx(tx).GetByID(ctx, cardID)
		if err != nil {
			return fmt.Errorf("access card %s: %w", cardID, err)
		}
		if card.Status != models.CardActive {
			return fmt.Errorf("access card %s is %s, not active: %w", cardID, card.Status, ErrConflict)
		}

		user, err := s.users.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}
		if user.Status != models.UserActive {
			return fmt.Errorf("user %s is %s, not active: %w", userID, user.Status, ErrConflict)
		}

		if _, err := s.userCards.WithTx(tx).GetByCardID(ctx, cardID); err == nil {
			return fmt.Errorf("access card %s already assigned: %w", cardID, ErrConflict)
		} else if err != repo.ErrNotFound {
			return err
		}

		// The unique index on access_card_id backstops the check above if a
		// concurrent assign slipped past it.
		assignment, err = s.userCards.WithTx(tx).Create(ctx, cardID, userID, actorID)
		if err != nil {
			return err
		}

		return s.logs.WithTx(tx).AppendCardLog(ctx, &models.AccessCardLog{
			AccessCardID:     cardID,
			Status:           card.Status,
			AssignedToUserID: &userID,
			CreatedByUserID:  actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// UnassignCard removes the binding for (card, user). An active card drops to
// inactive — nobody holds it anymore. One card log row is always written.
func (s *AssignmentService) UnassignCard(ctx context.Context, actorID, cardID, userID string) error {
	if actorID == "" || cardID == "" || userID == "" {
		return fmt.Errorf("%w: missing actor, card or user id", ErrValidation)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		card, err := s.cards.WithTx(tx).GetByID(ctx, cardID)
		if err != nil {
			return fmt.Errorf("access card %s: %w", cardID, err)
		}

		if err := s.userCards.WithTx(tx).Delete(ctx, cardID, userID); err != nil {
			return fmt.Errorf("assignment for card %s and user %s: %w", cardID, userID, err)
		}

		status := card.Status
		if status == models.CardActive {
			status = models.CardInactive
			if err := s.cards.WithTx(tx).SetStatus(ctx, cardID, status, actorID); err != nil {
				return err
			}
		}

		return s.logs.WithTx(tx).AppendCardLog(ctx, &models.AccessCardLog{
			AccessCardID:    cardID,
			Status:          status,
			CreatedByUserID: actorID,
		})
	})
}

// AssignDevice binds a device to a user. The device must be available and the
// user active. The (user, device) pair may only be bound once.
func (s *AssignmentService) AssignDevice(ctx context.Context, actorID, deviceID, userID string) (*models.UserDevice, error) {
	if actorID == "" || deviceID == "" || userID == "" {
		return nil, fmt.Errorf("%w: missing actor, device or user id", ErrValidation)
	}

	var assignment *models.UserDevice
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		device, err := s.devices.WithTx(tx).GetByID(ctx, deviceID)
		if err != nil {
			return fmt.Errorf("device %s: %w", deviceID, err)
		}
		if device.Status != models.DeviceAvailable {
			return fmt.Errorf("device %s is %s, not available: %w", deviceID, device.Status, ErrConflict)
		}

		user, err := s.users.WithTx(tx).GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}
		if user.Status != models.UserActive {
			return fmt.Errorf("user %s is %s, not active: %w", userID, user.Status, ErrConflict)
		}

		if _, err := s.userDevices.WithTx(tx).Get(ctx, deviceID, userID); err == nil {
			return fmt.Errorf("device %s already assigned to user %s: %w", deviceID, userID, ErrConflict)
		} else if err != repo.ErrNotFound {
			return err
		}

		assignment, err = s.userDevices.WithTx(tx).Create(ctx, deviceID, userID, actorID)
		if err != nil {
			return err
		}

		return s.logs.WithTx(tx).AppendDeviceAssignmentLog(ctx, &models.DeviceAssignmentLog{
			DeviceID:         deviceID,
			AssignedToUserID: userID,
			Assigned:         true,
			CreatedByUserID:  actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// UnassignDevice removes the binding for (device, user). Unlike cards, the
// device keeps its status.
func (s *AssignmentService) UnassignDevice(ctx context.Context, actorID, deviceID, userID string) error {
	if actorID == "" || deviceID == "" || userID == "" {
		return fmt.Errorf("%w: missing actor, device or user id", ErrValidation)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.devices.WithTx(tx).GetByID(ctx, deviceID); err != nil {
			return fmt.Errorf("device %s: %w", deviceID, err)
		}

		if err := s.userDevices.WithTx(tx).Delete(ctx, deviceID, userID); err != nil {
			return fmt.Errorf("assignment for device %s and user %s: %w", deviceID, userID, err)
		}

		return s.logs.WithTx(tx).AppendDeviceAssignmentLog(ctx, &models.DeviceAssignmentLog{
			DeviceID:         deviceID,
			AssignedToUserID: userID,
			Assigned:         false,
			CreatedByUserID:  actorID,
		})
	})
}

// deactivateAssignedCards forces every card held by userID to inactive and
// writes one card log row per card. Runs inside the caller's transaction.
// keepAssignment controls whether the log snapshot still shows the holder.
func (s *AssignmentService) deactivateAssignedCards(ctx context.Context, tx *sql.Tx, actorID, userID string, keepAssignment bool) error {
	assignments, err := s.userCards.WithTx(tx).ListByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for _, a := range assignments {
		card, err := s.cards.WithTx(tx).GetByID(ctx, a.AccessCardID)
		if err != nil {
			return err
		}

		status := card.Status
		if status == models.CardActive {
			status = models.CardInactive
			if err := s.cards.WithTx(tx).SetStatus(ctx, card.ID, status, actorID); err != nil {
				return err
			}
		}

		entry := &models.AccessCardLog{
			AccessCardID:    card.ID,
			Status:          status,
			CreatedByUserID: actorID,
		}
		if keepAssignment {
			holder := a.AssignedToUserID
			entry.AssignedToUserID = &holder
		}
		if err := s.logs.WithTx(tx).AppendCardLog(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
