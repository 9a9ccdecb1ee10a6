package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"projecthub/api/models"
)

// ErrNotFound is returned when a page view id refers to no stored row.
var ErrNotFound = errors.New("page view not found")

type PageViewStore struct {
	db *sql.DB
}

func NewPageViewStore(db *sql.DB) *PageViewStore {
	return &PageViewStore{db: db}
}

// CreatePageView inserts one durable page-view row with time_spent = 0.
func (s *PageViewStore) CreatePageView(ctx context.Context, pv *models.PageView) error {
	query := `
		INSERT INTO page_views (
			id, session_id, page_path, full_path, page_title, referrer,
			user_agent, device_type, browser, os, ip_address, user_id,
			time_spent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, $13);
	`
	_, err := s.db.ExecContext(ctx, query,
		pv.ID,
		pv.SessionID,
		pv.PagePath,
		nullableString(pv.FullPath),
		nullableString(pv.PageTitle),
		nullableString(pv.Referrer),
		pv.UserAgent,
		pv.DeviceType,
		pv.Browser,
		pv.OS,
		pv.IPAddress,
		nullableInt(pv.UserID),
		pv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page view: %w", err)
	}
	return nil
}

// UpdateTimeSpent overwrites time_spent for the identified row. The new value
// replaces whatever was stored before; there is no ordering check against the
// previous value (last writer wins).
func (s *PageViewStore) UpdateTimeSpent(ctx context.Context, pageViewID string, timeSpent int) error {
	query := `UPDATE page_views SET time_spent = $1 WHERE id = $2;`
	res, err := s.db.ExecContext(ctx, query, timeSpent, pageViewID)
	if err != nil {
		return fmt.Errorf("failed to update time spent: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPageViewByID fetches a single page view row.
func (s *PageViewStore) GetPageViewByID(ctx context.Context, id string) (*models.PageView, error) {
	pv := &models.PageView{}
	query := `
		SELECT id, session_id, page_path, full_path, page_title, referrer,
		       user_agent, device_type, browser, os, ip_address, user_id,
		       time_spent, created_at
		FROM page_views
		WHERE id = $1;
	`
	var fullPath, pageTitle, referrer sql.NullString
	var userID sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&pv.ID,
		&pv.SessionID,
		&pv.PagePath,
		&fullPath,
		&pageTitle,
		&referrer,
		&pv.UserAgent,
		&pv.DeviceType,
		&pv.Browser,
		&pv.OS,
		&pv.IPAddress,
		&userID,
		&pv.TimeSpent,
		&pv.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get page view by id: %w", err)
	}

	pv.FullPath = fullPath.String
	pv.PageTitle = pageTitle.String
	pv.Referrer = referrer.String
	if userID.Valid {
		uid := int(userID.Int64)
		pv.UserID = &uid
	}
	return pv, nil
}

// AverageTimeSpent averages time_spent over rows created in the window.
func (s *PageViewStore) AverageTimeSpent(ctx context.Context, start, end time.Time) (float64, error) {
	query := `
		SELECT COALESCE(AVG(time_spent), 0)
		FROM page_views
		WHERE created_at >= $1 AND created_at <= $2;
	`
	var avg float64
	if err := s.db.QueryRowContext(ctx, query, start, end).Scan(&avg); err != nil {
		return 0.0, fmt.Errorf("failed to query average time spent: %w", err)
	}
	return avg, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
