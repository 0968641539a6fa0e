package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crucial707/makerspace-access/internal/metrics"
	"github.com/crucial707/makerspace-access/internal/models"
	"github.com/crucial707/makerspace-access/internal/repo"
)

// ==========================================================================
// Scan authorizer
// ==========================================================================

// ScanService decides whether a card presented at an access node is accepted
// and records the outcome. A scan is granted when the node exists and the
// card number maps to a live assignment; the card's own status is not part of
// the decision.
type ScanService struct {
	db        *sql.DB
	nodes     *repo.AccessNodeRepo
	userCards *repo.UserAccessCardRepo
	logs      *repo.AuditLogRepo
}

func NewScanService(db *sql.DB) *ScanService {
	return &ScanService{
		db:        db,
		nodes:     repo.NewAccessNodeRepo(db),
		userCards: repo.NewUserAccessCardRepo(db),
		logs:      repo.NewAuditLogRepo(db),
	}
}

// Scan authorizes a card presented at a node. On success it appends exactly
// one access node log row and stamps the node's last-access fields in the
// same transaction. A rejected scan writes nothing.
func (s *ScanService) Scan(ctx context.Context, actorID, nodeID string, cardNumber int, action models.ScanAction) (*models.AccessNodeLog, error) {
	if actorID == "" || nodeID == "" || cardNumber <= 0 {
		return nil, fmt.Errorf("%w: missing node id or card number", ErrValidation)
	}
	if !models.ValidScanAction(string(action)) {
		return nil, fmt.Errorf("%w: unknown scan action %q", ErrValidation, action)
	}

	node, err := s.nodes.GetByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metrics.ScanDecisions.WithLabelValues("denied").Inc()
		}
		return nil, fmt.Errorf("access node %s: %w", nodeID, err)
	}

	assignment, err := s.userCards.GetAssignmentByCardNumber(ctx, cardNumber)
	if err != nil {
		// ErrNotFound covers both an unknown card and an unassigned one;
		// the node is told "denied" either way and nothing is logged.
		if errors.Is(err, repo.ErrNotFound) {
			metrics.ScanDecisions.WithLabelValues("denied").Inc()
		}
		return nil, fmt.Errorf("card number %d: %w", cardNumber, err)
	}

	entry := &models.AccessNodeLog{
		AccessNodeID:    node.ID,
		AccessCardID:    assignment.AccessCardID,
		UserID:          assignment.AssignedToUserID,
		DeviceID:        node.DeviceID,
		Action:          action,
		Success:         true,
		CreatedByUserID: actorID,
	}

	err = s.withScanTx(ctx, func(tx *sql.Tx) error {
		if err := s.logs.WithTx(tx).AppendNodeLog(ctx, entry); err != nil {
			return err
		}
		return s.nodes.WithTx(tx).TouchLastAccess(ctx, node.ID, assignment.AssignedToUserID, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	metrics.ScanDecisions.WithLabelValues("granted").Inc()
	return entry, nil
}

func (s *ScanService) withScanTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
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
