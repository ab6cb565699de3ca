package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartSoftDeleteCleaner removes soft-deleted users and locales older
// than the retention window, checking on the given interval.
func StartSoftDeleteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				for _, table := range []string{"users", "locales"} {
					res, err := db.ExecContext(ctx, `
                        DELETE FROM `+table+`
                         WHERE deleted = true
                           AND deleted_at < $1
                    `, cutoff)
					if err != nil {
						log.Error("failed to clean soft-deleted rows",
							zap.String("table", table), zap.Error(err))
						continue
					}
					if rows, _ := res.RowsAffected(); rows > 0 {
						log.Info("cleaned soft-deleted rows",
							zap.String("table", table), zap.Int64("removed", rows))
					}
				}
			}
		}
	}()
}
