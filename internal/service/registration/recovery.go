package registration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuswallet/registration/internal/domain"
)

const recoveryBatchSize = 100

// RecoverStale marks pending transactions older than the cutoff as
// failed. The debit, the allocation flips and the committed status all
// share one database transaction, so a row still pending after a crash
// proves none of them persisted; failing it is always safe and unblocks
// the student's next attempt. Run once at startup.
func (s *Service) RecoverStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	recovered := 0

	for {
		stale, err := s.transactions.GetStalePending(ctx, cutoff, recoveryBatchSize)
		if err != nil {
			return recovered, fmt.Errorf("RecoverStale: %w", err)
		}
		if len(stale) == 0 {
			return recovered, nil
		}

		for _, t := range stale {
			if err := s.transactions.MarkFailed(ctx, t.ID, domain.FailureReasonStalePending); err != nil {
				return recovered, fmt.Errorf("RecoverStale: transaction %s: %w", t.ID, err)
			}
			slog.Info("recovered stale pending transaction",
				"transaction_id", t.ID,
				"student_id", t.StudentID,
				"semester_id", t.SemesterID,
				"created_at", t.CreatedAt,
			)
			recovered++
		}

		if len(stale) < recoveryBatchSize {
			return recovered, nil
		}
	}
}
