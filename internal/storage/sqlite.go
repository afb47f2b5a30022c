// Package storage persists analyzed signals in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"finsignals/internal/signal"
	"finsignals/internal/textnorm"
)

type Store struct {
	db *sql.DB
}

// Query filters FetchSignals output. Zero values mean "no filter".
type Query struct {
	Sector        string
	Label         string
	Ticker        string
	MinImpact     int
	MinConfidence int
	Limit         int
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		ts_published TEXT,
		ts_ingested TEXT,
		source_domain TEXT,
		url TEXT,
		title TEXT,
		title_clean TEXT,
		title_ru TEXT,
		lang TEXT,
		sector TEXT,
		label TEXT,
		region TEXT,
		tickers_json TEXT,
		impact INTEGER,
		confidence INTEGER,
		sentiment INTEGER,
		trust_score REAL,
		what TEXT,
		why_matters TEXT,
		action_window TEXT,
		summary TEXT,
		analysis TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_signals_published ON signals(ts_published DESC);
	CREATE INDEX IF NOT EXISTS idx_signals_impact ON signals(impact DESC);
	CREATE INDEX IF NOT EXISTS idx_signals_sector ON signals(sector);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSignal inserts or refreshes one signal keyed by its content id.
func (s *Store) SaveSignal(ctx context.Context, sig signal.Signal) error {
	tickersJSON, _ := json.Marshal(sig.Tickers)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signals
			(id, ts_published, ts_ingested, source_domain, url, title, title_clean, title_ru, lang,
			 sector, label, region, tickers_json, impact, confidence, sentiment, trust_score,
			 what, why_matters, action_window, summary, analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label=excluded.label, region=excluded.region, tickers_json=excluded.tickers_json,
			impact=excluded.impact, confidence=excluded.confidence, sentiment=excluded.sentiment,
			trust_score=excluded.trust_score, what=excluded.what, why_matters=excluded.why_matters,
			action_window=excluded.action_window, summary=excluded.summary, analysis=excluded.analysis,
			title_ru=excluded.title_ru
	`,
		sig.ID, fmtTime(sig.Published), fmtTime(sig.Ingested), sig.SourceDomain, sig.URL,
		sig.Title, sig.NormalizedTitle, sig.TitleRU, string(sig.Lang),
		sig.Sector, sig.Label, sig.Region, string(tickersJSON),
		sig.Impact, sig.Confidence, sig.Sentiment, sig.TrustScore,
		sig.What, sig.WhyMatters, sig.ActionWindow, sig.Summary, sig.Analysis,
	)
	if err != nil {
		return fmt.Errorf("save signal %s: %w", sig.ID, err)
	}
	return nil
}

// FetchSignals returns stored signals newest first.
func (s *Store) FetchSignals(ctx context.Context, q Query) ([]signal.Signal, error) {
	conds := []string{"1=1"}
	var args []any
	if q.Sector != "" {
		conds = append(conds, "sector = ?")
		args = append(args, strings.ToUpper(q.Sector))
	}
	if q.Label != "" {
		conds = append(conds, "label = ?")
		args = append(args, strings.ToLower(q.Label))
	}
	if q.Ticker != "" {
		conds = append(conds, "tickers_json LIKE ?")
		args = append(args, `%"`+strings.ToUpper(q.Ticker)+`"%`)
	}
	if q.MinImpact > 0 {
		conds = append(conds, "impact >= ?")
		args = append(args, q.MinImpact)
	}
	if q.MinConfidence > 0 {
		conds = append(conds, "confidence >= ?")
		args = append(args, q.MinConfidence)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts_published, ts_ingested, source_domain, url, title, title_clean, title_ru, lang,
		       sector, label, region, tickers_json, impact, confidence, sentiment, trust_score,
		       what, why_matters, action_window, summary, analysis
		FROM signals
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY ts_published DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch signals: %w", err)
	}
	defer rows.Close()

	var out []signal.Signal
	for rows.Next() {
		var (
			sig                    signal.Signal
			published, ingested    string
			lang, tickersJSON      string
			titleRU, what, whyM    sql.NullString
			window, summ, analysis sql.NullString
			titleClean, sourceDom  sql.NullString
			sector, label, region  sql.NullString
		)
		if err := rows.Scan(
			&sig.ID, &published, &ingested, &sourceDom, &sig.URL, &sig.Title, &titleClean, &titleRU, &lang,
			&sector, &label, &region, &tickersJSON, &sig.Impact, &sig.Confidence, &sig.Sentiment, &sig.TrustScore,
			&what, &whyM, &window, &summ, &analysis,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Published = signal.ParseTimestamp(published)
		sig.Ingested = signal.ParseTimestamp(ingested)
		sig.SourceDomain = sourceDom.String
		sig.NormalizedTitle = titleClean.String
		sig.TitleRU = titleRU.String
		sig.Lang = textnorm.Language(lang)
		sig.Sector = sector.String
		sig.Label = label.String
		sig.Region = region.String
		sig.What = what.String
		sig.WhyMatters = whyM.String
		sig.ActionWindow = window.String
		sig.Summary = summ.String
		sig.Analysis = analysis.String
		_ = json.Unmarshal([]byte(tickersJSON), &sig.Tickers)
		out = append(out, sig)
	}
	return out, rows.Err()
}

// Stats reports row counts for the monitoring endpoint.
func (s *Store) Stats(ctx context.Context) (map[string]any, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signals`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count signals: %w", err)
	}

	bySector := map[string]int{}
	rows, err := s.db.QueryContext(ctx, `SELECT sector, COUNT(*) FROM signals GROUP BY sector`)
	if err != nil {
		return nil, fmt.Errorf("count by sector: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sector sql.NullString
		var n int
		if err := rows.Scan(&sector, &n); err != nil {
			return nil, fmt.Errorf("scan sector count: %w", err)
		}
		bySector[sector.String] = n
	}
	return map[string]any{"total": total, "by_sector": bySector}, rows.Err()
}

// Cleanup deletes signals published more than retention ago and returns
// how many rows went away.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := s.db.ExecContext(ctx, `DELETE FROM signals WHERE ts_published < ?`, fmtTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Close() error { return s.db.Close() }

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
