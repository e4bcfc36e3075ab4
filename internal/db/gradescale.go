package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/school-planner/internal/models"
)

func (s *PerformanceStore) ScaleByID(ctx context.Context, id int64) (*models.GradeScale, error) {
	row := s.q.QueryRowContext(ctx, `SELECT id, name, definition FROM grade_scales WHERE id = $1`, id)
	var sc models.GradeScale
	err := row.Scan(&sc.ID, &sc.Name, &sc.Definition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *PerformanceStore) CreateScale(ctx context.Context, name, definition string) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO grade_scales (name, definition) VALUES ($1, $2) RETURNING id`,
		name, definition).Scan(&id)
	return id, err
}

func (s *PerformanceStore) ListScales(ctx context.Context) ([]models.GradeScale, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, definition FROM grade_scales ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GradeScale
	for rows.Next() {
		var sc models.GradeScale
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Definition); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
