package store

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"projecthub/api/database"
	"projecthub/api/models"
	"projecthub/api/utils"
)

// ArchiveStore mirrors created page views into an append-only ClickHouse
// table for the read-side stats queries. It is strictly best-effort: the
// canonical row lives in Postgres, and a failed archive write is logged
// and dropped.
type ArchiveStore struct {
	DB *database.ClickHouseClient
}

type ViewCountByTime struct {
	Time  time.Time `json:"time"`
	Count uint64    `json:"count"`
}

func NewArchiveStore(chClient *database.ClickHouseClient) *ArchiveStore {
	return &ArchiveStore{DB: chClient}
}

func (s *ArchiveStore) InsertPageViewEvent(ctx context.Context, pv *models.PageView) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO page_view_events (
			page_view_id, session_id, user_id, page_path, referrer,
			user_agent, device_type, browser, os, ip_address, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare archive insert: %w", err)
	}

	userID := ""
	if pv.UserID != nil {
		userID = fmt.Sprintf("%d", *pv.UserID)
	}

	if err := batch.Append(
		pv.ID,
		pv.SessionID,
		userID,
		pv.PagePath,
		pv.Referrer,
		pv.UserAgent,
		pv.DeviceType,
		pv.Browser,
		pv.OS,
		pv.IPAddress,
		pv.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append page view event: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send archive batch: %w", err)
	}
	return nil
}

func (s *ArchiveStore) GetViewCountsOverTime(ctx context.Context, interval string, start, end time.Time) ([]ViewCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(created_at) AS time_bucket, count() AS total_views
		FROM page_view_events
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query view counts over time: %w", err)
	}
	defer rows.Close()

	var results []ViewCountByTime
	for rows.Next() {
		var timeBucket time.Time
		var count uint64
		if err := rows.Scan(&timeBucket, &count); err != nil {
			log.Printf("Error scanning row for view counts: %v", err)
			continue
		}
		results = append(results, ViewCountByTime{Time: timeBucket, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during view counts query: %w", err)
	}

	return results, nil
}

func (s *ArchiveStore) GetTopPaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT page_path, count() AS view_count
		FROM page_view_events
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY page_path
		ORDER BY view_count DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top page paths: %w", err)
	}
	defer rows.Close()

	var results []models.TopPathResult
	for rows.Next() {
		var pagePath string
		var count uint64
		if err := rows.Scan(&pagePath, &count); err != nil {
			log.Printf("Error scanning row for top page paths: %v", err)
			continue
		}
		results = append(results, models.TopPathResult{PagePath: pagePath, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top page paths: %w", err)
	}

	return results, nil
}

// GetAverageSessionPageViews returns page views per distinct session in the
// window. Dwell-time averages come from Postgres, since heartbeat updates are
// not mirrored into the archive.
func (s *ArchiveStore) GetAverageSessionPageViews(ctx context.Context, start, end time.Time) (float64, error) {
	query := `
		SELECT count() / uniq(session_id)
		FROM page_view_events
		WHERE created_at >= ? AND created_at <= ?
	`
	var avg float64
	err := s.DB.Conn.QueryRow(ctx, query, start, end).Scan(&avg)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return 0.0, nil
		}
		return 0.0, fmt.Errorf("failed to query average session page views: %w", err)
	}

	if math.IsNaN(avg) {
		return 0.0, nil
	}
	return avg, nil
}
