// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/rigmatch/internal/config"
	"github.com/tomtom215/rigmatch/internal/logging"
	"github.com/tomtom215/rigmatch/internal/metrics"
	"github.com/tomtom215/rigmatch/internal/models"
)

// suitabilityColumns whitelists the purpose-to-column mapping. Purposes never
// reach SQL directly; anything outside this map is rejected before querying.
var suitabilityColumns = map[string]string{
	"gaming":      "suit_gaming",
	"office":      "suit_office",
	"creative":    "suit_creative",
	"programming": "suit_programming",
	"general":     "suit_general",
}

const candidateColumns = `id, name, description, total_price,
	suit_gaming, suit_office, suit_creative, suit_programming, suit_general,
	perf_overall, perf_cpu, perf_gpu, perf_ram, perf_storage,
	component_ids, source, created_at`

// DuckDBStore implements Store over an embedded DuckDB database.
type DuckDBStore struct {
	conn *sql.DB
	cfg  config.DatabaseConfig
}

// NewDuckDBStore opens the catalog database, configures the connection pool,
// and creates the schema if missing.
func NewDuckDBStore(cfg config.DatabaseConfig) (*DuckDBStore, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure parent directory exists for the database file
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &DuckDBStore{conn: conn, cfg: cfg}

	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	if cfg.SeedMockData {
		if err := s.SeedMockData(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Failed to seed mock catalog data")
		}
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Catalog database opened")
	return s, nil
}

func (s *DuckDBStore) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS configurations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			total_price DOUBLE NOT NULL,

			-- Suitability ratings per purpose (0-100)
			suit_gaming DOUBLE NOT NULL DEFAULT 50,
			suit_office DOUBLE NOT NULL DEFAULT 50,
			suit_creative DOUBLE NOT NULL DEFAULT 50,
			suit_programming DOUBLE NOT NULL DEFAULT 50,
			suit_general DOUBLE NOT NULL DEFAULT 50,

			-- Performance ratings (0-100)
			perf_overall DOUBLE NOT NULL DEFAULT 50,
			perf_cpu DOUBLE NOT NULL DEFAULT 50,
			perf_gpu DOUBLE NOT NULL DEFAULT 50,
			perf_ram DOUBLE NOT NULL DEFAULT 50,
			perf_storage DOUBLE NOT NULL DEFAULT 50,

			-- JSON array of component IDs in build order
			component_ids TEXT NOT NULL DEFAULT '[]',

			source TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS components (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			brand TEXT NOT NULL,
			model TEXT,
			price DOUBLE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_configurations_price ON configurations(total_price)`,
		`CREATE INDEX IF NOT EXISTS idx_components_type ON components(type)`,
	}

	for _, query := range queries {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// QueryCandidates returns configurations matching the filter, ordered by
// relevance descending then price ascending.
func (s *DuckDBStore) QueryCandidates(ctx context.Context, filter CandidateFilter) ([]models.CandidateConfiguration, error) {
	start := time.Now()

	query, args, err := buildCandidateQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	metrics.RecordCatalogQuery("query_candidates", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// buildCandidateQuery assembles the filtered candidate SQL. The suitability
// column comes from the whitelist; user input never lands in the SQL text.
func buildCandidateQuery(filter CandidateFilter) (string, []interface{}, error) {
	var (
		conditions []string
		args       []interface{}
	)

	conditions = append(conditions, "total_price >= ?", "total_price <= ?")
	args = append(args, filter.PriceMin, filter.PriceMax)

	relevance := "perf_overall"
	if filter.Purpose != "" {
		col, ok := suitabilityColumns[filter.Purpose]
		if !ok {
			return "", nil, fmt.Errorf("unknown purpose %q", filter.Purpose)
		}
		relevance = fmt.Sprintf("(0.6 * %s + 0.4 * perf_overall)", col)

		if filter.MinSuitability > 0 {
			conditions = append(conditions, col+" >= ?")
			args = append(args, filter.MinSuitability)
		}
	}

	if filter.MinOverallPerformance > 0 {
		conditions = append(conditions, "perf_overall >= ?")
		args = append(args, filter.MinOverallPerformance)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`SELECT %s FROM configurations
		WHERE %s
		ORDER BY %s DESC, total_price ASC
		LIMIT %d`,
		candidateColumns, strings.Join(conditions, " AND "), relevance, limit)

	return query, args, nil
}

// GetConfiguration returns a single configuration by ID.
func (s *DuckDBStore) GetConfiguration(ctx context.Context, id string) (*models.CandidateConfiguration, error) {
	start := time.Now()

	query := fmt.Sprintf("SELECT %s FROM configurations WHERE id = ?", candidateColumns)
	rows, err := s.conn.QueryContext(ctx, query, id)
	metrics.RecordCatalogQuery("get_configuration", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("configuration lookup failed: %w", err)
	}
	defer rows.Close()

	configs, err := scanCandidates(rows)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, ErrNotFound
	}
	return &configs[0], nil
}

// ListConfigurations returns a page of configurations ordered by price.
func (s *DuckDBStore) ListConfigurations(ctx context.Context, page, pageSize int) ([]models.CandidateConfiguration, int, error) {
	start := time.Now()

	var total int
	err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM configurations").Scan(&total)
	if err != nil {
		metrics.RecordCatalogQuery("list_configurations", time.Since(start), err)
		return nil, 0, fmt.Errorf("configuration count failed: %w", err)
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM configurations
		ORDER BY total_price ASC, id ASC
		LIMIT %d OFFSET %d`, candidateColumns, pageSize, offset)

	rows, err := s.conn.QueryContext(ctx, query)
	metrics.RecordCatalogQuery("list_configurations", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("configuration list failed: %w", err)
	}
	defer rows.Close()

	configs, err := scanCandidates(rows)
	if err != nil {
		return nil, 0, err
	}
	return configs, total, nil
}

// ComponentsByIDs resolves component records for a batch of IDs in one query.
func (s *DuckDBStore) ComponentsByIDs(ctx context.Context, ids []string) (map[string]models.ComponentRecord, error) {
	result := make(map[string]models.ComponentRecord, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	start := time.Now()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`SELECT id, type, name, brand, COALESCE(model, ''), price
		FROM components WHERE id IN (%s)`, placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	metrics.RecordCatalogQuery("components_by_ids", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("component batch lookup failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.ComponentRecord
		if err := rows.Scan(&c.ID, &c.Type, &c.Name, &c.Brand, &c.Model, &c.Price); err != nil {
			return nil, fmt.Errorf("component scan failed: %w", err)
		}
		result[c.ID] = c
	}

	return result, rows.Err()
}

// ListComponents returns a page of components, optionally filtered by type.
func (s *DuckDBStore) ListComponents(ctx context.Context, componentType string, page, pageSize int) ([]models.ComponentRecord, int, error) {
	start := time.Now()

	where := ""
	var args []interface{}
	if componentType != "" {
		where = " WHERE type = ?"
		args = append(args, componentType)
	}

	var total int
	err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM components"+where, args...).Scan(&total)
	if err != nil {
		metrics.RecordCatalogQuery("list_components", time.Since(start), err)
		return nil, 0, fmt.Errorf("component count failed: %w", err)
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT id, type, name, brand, COALESCE(model, ''), price
		FROM components%s
		ORDER BY type ASC, price ASC, id ASC
		LIMIT %d OFFSET %d`, where, pageSize, offset)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	metrics.RecordCatalogQuery("list_components", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("component list failed: %w", err)
	}
	defer rows.Close()

	var components []models.ComponentRecord
	for rows.Next() {
		var c models.ComponentRecord
		if err := rows.Scan(&c.ID, &c.Type, &c.Name, &c.Brand, &c.Model, &c.Price); err != nil {
			return nil, 0, fmt.Errorf("component scan failed: %w", err)
		}
		components = append(components, c)
	}

	return components, total, rows.Err()
}

// Ping verifies the database connection is alive.
func (s *DuckDBStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database connection.
func (s *DuckDBStore) Close() error {
	return s.conn.Close()
}

// scanCandidates reads candidate configuration rows into domain records.
func scanCandidates(rows *sql.Rows) ([]models.CandidateConfiguration, error) {
	var configs []models.CandidateConfiguration

	for rows.Next() {
		var (
			c           models.CandidateConfiguration
			description sql.NullString
			source      sql.NullString
			createdAt   sql.NullTime
			suitGaming, suitOffice, suitCreative,
			suitProgramming, suitGeneral float64
			componentIDs string
		)

		err := rows.Scan(&c.ID, &c.Name, &description, &c.TotalPrice,
			&suitGaming, &suitOffice, &suitCreative, &suitProgramming, &suitGeneral,
			&c.Performance.Overall, &c.Performance.CPU, &c.Performance.GPU,
			&c.Performance.RAM, &c.Performance.Storage,
			&componentIDs, &source, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("candidate scan failed: %w", err)
		}

		c.Description = description.String
		c.Source = source.String
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time
		}

		c.SuitabilityScores = map[string]float64{
			"gaming":      suitGaming,
			"office":      suitOffice,
			"creative":    suitCreative,
			"programming": suitProgramming,
			"general":     suitGeneral,
		}

		if err := json.Unmarshal([]byte(componentIDs), &c.ComponentIDs); err != nil {
			logging.Warn().Err(err).Str("configuration_id", c.ID).Msg("Malformed component_ids, skipping list")
			c.ComponentIDs = nil
		}

		configs = append(configs, c)
	}

	return configs, rows.Err()
}
