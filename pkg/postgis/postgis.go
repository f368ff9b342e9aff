// Package postgis persists fetched WFS features in a PostGIS-enabled
// Postgres database so envelope queries survive process restarts.
package postgis

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kass/go-ogc-client/pkg/models"
)

// FeatureStore stores feature envelopes in PostGIS
type FeatureStore struct {
	db *sql.DB
}

// NewFeatureStore opens a connection to the feature database
func NewFeatureStore(host, user, password, dbname string, port int) (*FeatureStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &FeatureStore{db: db}, nil
}

// InitSchema creates the necessary tables
func (s *FeatureStore) InitSchema() error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,

		`DROP TABLE IF EXISTS wfs_features;`,

		`CREATE TABLE wfs_features (
			fid TEXT NOT NULL,
			type_name TEXT NOT NULL,
			envelope GEOMETRY(POLYGON, 4326),
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (fid, type_name)
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// CreateSpatialIndex creates a GIST index on the envelope column
func (s *FeatureStore) CreateSpatialIndex() error {
	query := `CREATE INDEX idx_wfs_features_envelope ON wfs_features USING GIST(envelope);`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create spatial index: %w", err)
	}
	if _, err := s.db.Exec("ANALYZE wfs_features;"); err != nil {
		return fmt.Errorf("failed to analyze table: %w", err)
	}
	return nil
}

// BulkInsert inserts features in batched transactions
func (s *FeatureStore) BulkInsert(features []*models.Feature) error {
	const batchSize = 10000

	stmt, err := s.db.Prepare(`
		INSERT INTO wfs_features (fid, type_name, envelope)
		VALUES ($1, $2, ST_MakeEnvelope($3, $4, $5, $6, 4326))
		ON CONFLICT (fid, type_name) DO UPDATE
			SET envelope = EXCLUDED.envelope, fetched_at = now()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStmt := tx.Stmt(stmt)

	for i := 0; i < len(features); i++ {
		f := features[i]
		_, err := txStmt.Exec(f.ID, f.TypeName,
			f.Envelope.BottomLeft.Lon, f.Envelope.BottomLeft.Lat,
			f.Envelope.TopRight.Lon, f.Envelope.TopRight.Lat)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert feature %s: %w", f.ID, err)
		}

		// Commit batch
		if (i+1)%batchSize == 0 {
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit batch: %w", err)
			}

			tx, err = s.db.Begin()
			if err != nil {
				return fmt.Errorf("failed to begin new transaction: %w", err)
			}
			txStmt = tx.Stmt(stmt)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit final batch: %w", err)
	}
	return nil
}

// QueryBox returns features whose envelope intersects the bounding box
func (s *FeatureStore) QueryBox(box models.BoundingBox) ([]*models.Feature, error) {
	query := `
		SELECT fid, type_name,
			ST_XMin(envelope), ST_YMin(envelope),
			ST_XMax(envelope), ST_YMax(envelope)
		FROM wfs_features
		WHERE envelope && ST_MakeEnvelope($1, $2, $3, $4, 4326)
	`

	rows, err := s.db.Query(query,
		box.BottomLeft.Lon, box.BottomLeft.Lat,
		box.TopRight.Lon, box.TopRight.Lat)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []*models.Feature
	for rows.Next() {
		var fid, typeName string
		var minLon, minLat, maxLon, maxLat float64

		if err := rows.Scan(&fid, &typeName, &minLon, &minLat, &maxLon, &maxLat); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		results = append(results, &models.Feature{
			ID:       fid,
			TypeName: typeName,
			Envelope: models.BoundingBox{
				BottomLeft: models.Location{Lat: minLat, Lon: minLon},
				TopRight:   models.Location{Lat: maxLat, Lon: maxLon},
			},
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Count returns the number of stored features
func (s *FeatureStore) Count() (int64, error) {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM wfs_features").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count features: %w", err)
	}
	return count, nil
}

// Stats returns database size and table statistics
func (s *FeatureStore) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var dbSize string
	err := s.db.QueryRow(`
		SELECT pg_size_pretty(pg_database_size(current_database()))
	`).Scan(&dbSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get database size: %w", err)
	}
	stats["database_size"] = dbSize

	var tableSize, indexSize string
	err = s.db.QueryRow(`
		SELECT
			pg_size_pretty(pg_total_relation_size('wfs_features')) as total_size,
			pg_size_pretty(pg_indexes_size('wfs_features')) as index_size
	`).Scan(&tableSize, &indexSize)
	if err != nil {
		// Table might not exist yet
		stats["table_size"] = "0 bytes"
		stats["index_size"] = "0 bytes"
	} else {
		stats["table_size"] = tableSize
		stats["index_size"] = indexSize
	}

	count, _ := s.Count()
	stats["row_count"] = count

	return stats, nil
}

// Close closes the database connection
func (s *FeatureStore) Close() error {
	return s.db.Close()
}
