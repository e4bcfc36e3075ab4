package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/school-planner/internal/ctxutil"
	"github.com/Spok95/school-planner/internal/db"
	"github.com/Spok95/school-planner/internal/metrics"
	"github.com/Spok95/school-planner/internal/observability"
	"go.uber.org/zap"
)

// ChangeLogRetention — сколько храним записи журнала изменений.
const ChangeLogRetention = 365 * 24 * time.Hour

// StartMaintenance вешает фоновые задачи: ping БД для метрик
// и чистку старых записей change_log.
func StartMaintenance(r *Runner, database *sql.DB, changeLog *db.ChangeLogStore, log *zap.SugaredLogger) {
	r.Every(30*time.Second, "db_ping", func(ctx context.Context) error {
		start := time.Now()
		pingCtx, cancel := ctxutil.WithDBTimeout(ctx)
		defer cancel()
		err := database.PingContext(pingCtx)
		metrics.ObserveDBPing(time.Since(start))
		if err != nil {
			observability.CaptureErr(err)
		}
		return err
	})

	r.Every(24*time.Hour, "changelog_prune", func(ctx context.Context) error {
		n, err := changeLog.Prune(ctx, time.Now().Add(-ChangeLogRetention))
		if err != nil {
			observability.CaptureErr(err)
			return err
		}
		if n > 0 {
			log.Infow("change_log pruned", "rows", n)
		}
		return nil
	})
}
