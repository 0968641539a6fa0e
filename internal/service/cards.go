package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crucial707/makerspace-access/internal/models"
	"github.com/crucial707/makerspace-access/internal/repo"
)

// CardParams carries the caller-supplied access card fields.
type CardParams struct {
	CardNumber   int
	FacilityCode int
	CardType     int
	Status       models.AccessCardStatus
}

// CreateCard creates a card and writes its first log row in the same
// transaction. New cards default to active.
func (s *AssignmentService) CreateCard(ctx context.Context, actorID string, p CardParams) (*models.AccessCard, error) {
	if p.CardNumber <= 0 {
		return nil, fmt.Errorf("%w: card number must be positive", ErrValidation)
	}

	c := &models.AccessCard{
		CardNumber:          p.CardNumber,
		FacilityCode:        p.FacilityCode,
		CardType:            p.CardType,
		Status:              p.Status,
		LastUpdatedByUserID: actorID,
	}
	if c.Status == "" {
		c.Status = models.CardActive
	}

	var created *models.AccessCard
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = s.cards.WithTx(tx).Create(ctx, c)
		if err != nil {
			return fmt.Errorf("create card %d: %w", p.CardNumber, err)
		}
		return s.logs.WithTx(tx).AppendCardLog(ctx, &models.AccessCardLog{
			AccessCardID:    created.ID,
			Status:          created.Status,
			CreatedByUserID: actorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCard rewrites a card's fields and appends a log row snapshotting the
// new status and the current holder, if any.
func (s *AssignmentService) UpdateCard(ctx context.Context, actorID, cardID string, p CardParams) (*models.AccessCard, error) {
	if p.CardNumber <= 0 {
		return nil, fmt.Errorf("%w: card number must be positive", ErrValidation)
	}

	var updated *models.AccessCard
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := s.cards.WithTx(tx).GetByID(ctx, cardID)
		if err != nil {
			return fmt.Errorf("card %s: %w", cardID, err)
		}

		c.CardNumber = p.CardNumber
		c.FacilityCode = p.FacilityCode
		c.CardType = p.CardType
		c.LastUpdatedByUserID = actorID
		if p.Status != "" {
			c.Status = p.Status
		}

		updated, err = s.cards.WithTx(tx).Update(ctx, c)
		if err != nil {
			return fmt.Errorf("update card %s: %w", cardID, err)
		}
		return s.appendCardSnapshot(ctx, tx, actorID, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ArchiveCard sets a card's status to archived and logs it. Any live
// assignment row is left in place; only archiving the holder removes it.
func (s *AssignmentService) ArchiveCard(ctx context.Context, actorID, cardID string) error {
	if cardID == "" {
		return fmt.Errorf("%w: missing card id", ErrValidation)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := s.cards.WithTx(tx).GetByID(ctx, cardID)
		if err != nil {
			return fmt.Errorf("card %s: %w", cardID, err)
		}
		if err := s.cards.WithTx(tx).SetStatus(ctx, c.ID, models.CardArchived, actorID); err != nil {
			return err
		}
		c.Status = models.CardArchived
		return s.appendCardSnapshot(ctx, tx, actorID, c)
	})
}

// appendCardSnapshot writes one card log row carrying the card's status and
// whoever currently holds it.
func (s *AssignmentService) appendCardSnapshot(ctx context.Context, tx *sql.Tx, actorID string, c *models.AccessCard) error {
	entry := &models.AccessCardLog{
		AccessCardID:    c.ID,
		Status:          c.Status,
		CreatedByUserID: actorID,
	}
	assignment, err := s.userCards.WithTx(tx).GetByCardID(ctx, c.ID)
	switch {
	case err == nil:
		entry.AssignedToUserID = &assignment.AssignedToUserID
	case errors.Is(err, repo.ErrNotFound):
		// unassigned card, nil assignee
	default:
		return err
	}
	return s.logs.WithTx(tx).AppendCardLog(ctx, entry)
}
