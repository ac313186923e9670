// internal/store/mysql.go
//
// MySQL visit store.
//
// Context
// -------
// Unlike the file backend, MySQL gives us a true append: each record is
// one INSERT, so there is no read-modify-write cycle to race.  Rows
// come back ordered by the auto-increment id, which is call order.
//
// Schema
// ------
//
//	CREATE TABLE visit (
//	    id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
//	    time            DATETIME(6)  NOT NULL,
//	    ip              VARCHAR(64)  NULL,
//	    country         VARCHAR(128) NULL,
//	    region          VARCHAR(128) NULL,
//	    city            VARCHAR(128) NULL,
//	    lat             DOUBLE       NULL,
//	    lon             DOUBLE       NULL,
//	    isp             VARCHAR(255) NULL,
//	    token           VARCHAR(255) NOT NULL,
//	    user_agent      TEXT         NULL,
//	    browser         VARCHAR(32)  NOT NULL,
//	    os              VARCHAR(32)  NOT NULL,
//	    google_maps_url VARCHAR(255) NULL,
//	    KEY idx_visit_token (token)
//	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/beacon/internal/visit"
)

const insertVisitSQL = `
	INSERT INTO visit
	    (time, ip, country, region, city, lat, lon, isp,
	     token, user_agent, browser, os, google_maps_url)
	VALUES
	    (:time, :ip, :country, :region, :city, :lat, :lon, :isp,
	     :token, :user_agent, :browser, :os, :google_maps_url)`

const selectVisitsSQL = `
	SELECT time, ip, country, region, city, lat, lon, isp,
	       token, user_agent, browser, os, google_maps_url
	FROM visit
	ORDER BY id`

// MySQLStore appends visit rows through a shared pool.
type MySQLStore struct {
	db *sqlx.DB
}

// NewMySQLStore wraps an open pool (see internal/database).
func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Append inserts one row; the database serializes concurrent inserts.
func (s *MySQLStore) Append(ctx context.Context, rec visit.Record) error {
	if _, err := s.db.NamedExecContext(ctx, insertVisitSQL, rec); err != nil {
		return fmt.Errorf("append visit: %w", err)
	}
	return nil
}

// All returns every row in insert order.
func (s *MySQLStore) All(ctx context.Context) ([]visit.Record, error) {
	visits := []visit.Record{}
	if err := s.db.SelectContext(ctx, &visits, selectVisitsSQL); err != nil {
		return nil, fmt.Errorf("load visits: %w", err)
	}
	return visits, nil
}

// Close releases the pool.
func (s *MySQLStore) Close() error { return s.db.Close() }
