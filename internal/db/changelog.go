package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/school-planner/internal/audit"
)

// ChangeLogStore реализует audit.Writer поверх таблицы change_log.
type ChangeLogStore struct {
	q dbtx
}

func NewChangeLogStore(database *sql.DB) *ChangeLogStore {
	return &ChangeLogStore{q: database}
}

func (s *ChangeLogStore) WriteChange(ctx context.Context, e audit.Entry) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO change_log (action, table_name, record_id, field_name, old_value, new_value, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.Action, e.TableName, e.RecordID, e.FieldName, e.OldValue, e.NewValue, e.Comment)
	return err
}

// ChangeLogEntry — запись журнала вместе с метаданными БД.
type ChangeLogEntry struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	audit.Entry
}

// Recent возвращает последние записи; action фильтрует по действию, пустая строка — все.
func (s *ChangeLogStore) Recent(ctx context.Context, limit int, action string) ([]ChangeLogEntry, error) {
	const base = `
		SELECT id, created_at, action, table_name, record_id, field_name, old_value, new_value, comment
		FROM change_log`
	var (
		rows *sql.Rows
		err  error
	)
	if action != "" {
		rows, err = s.q.QueryContext(ctx, base+` WHERE action = $1 ORDER BY id DESC LIMIT $2`, action, limit)
	} else {
		rows, err = s.q.QueryContext(ctx, base+` ORDER BY id DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChangeLogEntry
	for rows.Next() {
		var e ChangeLogEntry
		var act, table, field, oldVal, newVal sql.NullString
		var recordID sql.NullInt64
		var comment sql.NullString
		if err := rows.Scan(&e.ID, &e.CreatedAt, &act, &table, &recordID, &field, &oldVal, &newVal, &comment); err != nil {
			return nil, err
		}
		e.Action = act.String
		e.TableName = table.String
		e.FieldName = field.String
		e.OldValue = oldVal.String
		e.NewValue = newVal.String
		if recordID.Valid {
			e.RecordID = &recordID.Int64
		}
		if comment.Valid {
			e.Comment = &comment.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune удаляет записи старше olderThan. Возвращает число удалённых строк.
func (s *ChangeLogStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM change_log WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
