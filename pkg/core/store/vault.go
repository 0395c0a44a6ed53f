package store

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

// AnalysisVault persists finished linked models.
// Hybrid storage: Postgres when a pool is connected, JSON files otherwise.
// With neither backend the vault degrades to a no-op so a stateless run
// never fails on persistence.
type AnalysisVault struct {
	pool    *pgxpool.Pool
	fileDir string
}

// AnalysisRecord is the identity row kept beside the model payload; listings
// return these without deserializing whole models.
type AnalysisRecord struct {
	ID             uuid.UUID `json:"id"`
	Ticker         string    `json:"ticker"`
	CompanyName    string    `json:"company_name"`
	FiscalYear     int       `json:"fiscal_year"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
}

// vaultEntry is the on-disk shape: the identity row inlined next to the
// full model.
type vaultEntry struct {
	AnalysisRecord
	Model *models.LinkedModel `json:"model"`
}

// NewAnalysisVault builds a vault over the given backends. A nil pool with
// an empty dir defaults to a local file vault under .cache/analyses; a
// non-empty dir is used alongside the pool when both are given.
func NewAnalysisVault(pool *pgxpool.Pool, dir string) *AnalysisVault {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "analyses")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("[STORE] vault dir unavailable, file storage disabled: %v", err)
			dir = ""
		}
	}
	return &AnalysisVault{pool: pool, fileDir: dir}
}

// VaultFromEnv wires the default vault for a process: Postgres when
// DATABASE_URL connects, local files otherwise.
func VaultFromEnv(ctx context.Context) *AnalysisVault {
	if err := InitDB(ctx); err != nil {
		log.Printf("[STORE] database unavailable, using file vault: %v", err)
		return NewAnalysisVault(nil, "")
	}
	v := NewAnalysisVault(GetPool(), "")
	if err := v.EnsureSchema(ctx); err != nil {
		log.Printf("[STORE] schema check failed: %v", err)
	}
	return v
}

const analysesSchema = `
	CREATE TABLE IF NOT EXISTS analyses (
		id UUID PRIMARY KEY,
		ticker TEXT NOT NULL DEFAULT '',
		company_name TEXT NOT NULL DEFAULT '',
		fiscal_year INT NOT NULL DEFAULT 0,
		recommendation TEXT NOT NULL DEFAULT '',
		model_json JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// EnsureSchema creates the analyses table when it does not exist yet. No-op
// without a pool.
func (v *AnalysisVault) EnsureSchema(ctx context.Context) error {
	if v.pool == nil {
		return nil
	}
	if _, err := v.pool.Exec(ctx, analysesSchema); err != nil {
		return errs.ExternalAPI("failed to ensure analyses schema", err)
	}
	return nil
}

// Save persists a finished model and returns its analysis ID. The ID is
// assigned here, not by the database, so file and no-op vaults hand out the
// same kind of handle.
func (v *AnalysisVault) Save(ctx context.Context, m *models.LinkedModel) (uuid.UUID, error) {
	if m == nil {
		return uuid.Nil, errs.Validation("cannot save a nil model", nil)
	}

	id := uuid.New()
	rec := AnalysisRecord{
		ID:             id,
		Ticker:         strings.ToUpper(strings.TrimSpace(m.Ticker)),
		CompanyName:    m.CompanyName,
		FiscalYear:     m.BaseYear,
		Recommendation: string(m.Recommendation),
		CreatedAt:      time.Now().UTC(),
	}

	if v.pool != nil {
		modelJSON, err := json.Marshal(m)
		if err != nil {
			return uuid.Nil, errs.Validation("failed to marshal model", map[string]interface{}{
				"company": m.CompanyName,
			})
		}
		query := `
			INSERT INTO analyses (id, ticker, company_name, fiscal_year, recommendation, model_json, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = v.pool.Exec(ctx, query,
			rec.ID.String(), rec.Ticker, rec.CompanyName, rec.FiscalYear,
			rec.Recommendation, modelJSON, rec.CreatedAt,
		)
		if err != nil {
			return uuid.Nil, errs.ExternalAPI("failed to save analysis", err)
		}
	}

	if v.fileDir != "" {
		raw, err := json.MarshalIndent(vaultEntry{AnalysisRecord: rec, Model: m}, "", "  ")
		if err != nil {
			return uuid.Nil, errs.Validation("failed to marshal model", map[string]interface{}{
				"company": m.CompanyName,
			})
		}
		if err := os.WriteFile(v.entryPath(id), raw, 0o644); err != nil {
			return uuid.Nil, errs.ExternalAPI("failed to write analysis file", err)
		}
	}

	if v.pool == nil && v.fileDir == "" {
		log.Printf("[STORE] no vault backend; analysis %s not persisted", id)
	}
	return id, nil
}

// GetByID loads one stored model. A miss returns (nil, nil).
func (v *AnalysisVault) GetByID(ctx context.Context, id uuid.UUID) (*models.LinkedModel, error) {
	if v.pool != nil {
		var raw []byte
		err := v.pool.QueryRow(ctx,
			`SELECT model_json FROM analyses WHERE id = $1`, id.String()).Scan(&raw)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, nil
			}
			return nil, errs.ExternalAPI("failed to load analysis", err)
		}
		return unmarshalModel(raw)
	}

	if v.fileDir != "" {
		entry := v.loadEntry(v.entryPath(id))
		if entry == nil {
			return nil, nil
		}
		return entry.Model, nil
	}
	return nil, nil
}

// GetLatestByTicker loads the most recent stored model for a symbol. A miss
// returns (nil, nil).
func (v *AnalysisVault) GetLatestByTicker(ctx context.Context, ticker string) (*models.LinkedModel, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, nil
	}

	if v.pool != nil {
		var raw []byte
		err := v.pool.QueryRow(ctx, `
			SELECT model_json FROM analyses
			WHERE ticker = $1
			ORDER BY created_at DESC
			LIMIT 1`, ticker).Scan(&raw)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, nil
			}
			return nil, errs.ExternalAPI("failed to load analysis", err)
		}
		return unmarshalModel(raw)
	}

	if v.fileDir != "" {
		var latest *vaultEntry
		for _, entry := range v.scanEntries() {
			if !strings.EqualFold(entry.Ticker, ticker) {
				continue
			}
			if latest == nil || entry.CreatedAt.After(latest.CreatedAt) {
				e := entry
				latest = &e
			}
		}
		if latest != nil {
			return latest.Model, nil
		}
	}
	return nil, nil
}

// List returns newest-first identity rows without the model payloads.
func (v *AnalysisVault) List(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	if v.pool != nil {
		rows, err := v.pool.Query(ctx, `
			SELECT id, ticker, company_name, fiscal_year, recommendation, created_at
			FROM analyses
			ORDER BY created_at DESC
			LIMIT $1`, limit)
		if err != nil {
			return nil, errs.ExternalAPI("failed to list analyses", err)
		}
		defer rows.Close()

		var out []AnalysisRecord
		for rows.Next() {
			var rec AnalysisRecord
			var id string
			if err := rows.Scan(&id, &rec.Ticker, &rec.CompanyName,
				&rec.FiscalYear, &rec.Recommendation, &rec.CreatedAt); err != nil {
				return nil, errs.ExternalAPI("failed to scan analysis row", err)
			}
			rec.ID, _ = uuid.Parse(id)
			out = append(out, rec)
		}
		return out, rows.Err()
	}

	entries := v.scanEntries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]AnalysisRecord, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.AnalysisRecord)
	}
	return out, nil
}

// Exists reports whether an analysis ID is stored.
func (v *AnalysisVault) Exists(ctx context.Context, id uuid.UUID) bool {
	if v.pool != nil {
		var one int
		err := v.pool.QueryRow(ctx,
			`SELECT 1 FROM analyses WHERE id = $1 LIMIT 1`, id.String()).Scan(&one)
		if err == nil {
			return true
		}
	}
	if v.fileDir != "" {
		if _, err := os.Stat(v.entryPath(id)); err == nil {
			return true
		}
	}
	return false
}

// Internal file helpers

func (v *AnalysisVault) entryPath(id uuid.UUID) string {
	return filepath.Join(v.fileDir, id.String()+".json")
}

// loadEntry reads one vault file; unreadable or malformed files count as
// misses.
func (v *AnalysisVault) loadEntry(path string) *vaultEntry {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var entry vaultEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Model == nil {
		return nil
	}
	return &entry
}

func (v *AnalysisVault) scanEntries() []vaultEntry {
	files, err := os.ReadDir(v.fileDir)
	if err != nil {
		return nil
	}
	var out []vaultEntry
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".json" {
			continue
		}
		if entry := v.loadEntry(filepath.Join(v.fileDir, f.Name())); entry != nil {
			out = append(out, *entry)
		}
	}
	return out
}

func unmarshalModel(raw []byte) (*models.LinkedModel, error) {
	var m models.LinkedModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errs.ExternalAPI("failed to unmarshal stored model", err)
	}
	return &m, nil
}
