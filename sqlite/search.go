package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/carecost"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ carecost.ResultStore = (*ResultStore)(nil)

// ResultStore implements carecost.ResultStore using SQLite.
type ResultStore struct {
	db *DB
}

// NewResultStore creates a new ResultStore.
func NewResultStore(db *DB) *ResultStore {
	return &ResultStore{db: db}
}

// SaveSearch stores r with all hospital results and candidates. A missing
// ID is generated and a zero CreatedAt is set to now.
func (s *ResultStore) SaveSearch(ctx context.Context, r *carecost.SearchResult) error {
	if r.Location == "" {
		return carecost.Errorf(carecost.EINVALID, "search location required")
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Second)

	codes, err := json.Marshal(r.Codes)
	if err != nil {
		return err
	}
	names := []byte("{}")
	if len(r.Names) > 0 {
		if names, err = json.Marshal(r.Names); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO searches (id, location, codes, names, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Location, string(codes), string(names), string(r.Status), r.CreatedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	for i, h := range r.Hospitals {
		if err := insertHospitalResult(ctx, tx, r.ID, i, h); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertHospitalResult(ctx context.Context, tx *sql.Tx, searchID string, position int, h *carecost.HospitalResult) error {
	hospital := h.Hospital
	if hospital == nil {
		hospital = &carecost.Hospital{}
	}
	var lat, lon *float64
	if hospital.Location != nil {
		lat, lon = &hospital.Location.Lat, &hospital.Location.Lon
	}
	pdfs, err := json.Marshal(h.PDFs)
	if err != nil {
		return err
	}
	stats, err := json.Marshal(h.Stats)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO hospital_results (search_id, position, name, address, phone, website, lat, lon, distance, status, pdfs, stats, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, searchID, position, hospital.Name, hospital.Address, hospital.Phone, hospital.Website,
		nullFloat(lat), nullFloat(lon), hospital.Distance, string(h.Status), string(pdfs), string(stats), h.Err)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, c := range h.Candidates {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO candidates (hospital_result_id, position, code, value, currency, source_url, context, method)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, i, c.Code, c.Value, c.Currency, c.SourceURL, c.Context, string(c.Method)); err != nil {
			return err
		}
	}
	return nil
}

// FindSearch retrieves a search with its hospital results.
func (s *ResultStore) FindSearch(ctx context.Context, id string) (*carecost.SearchResult, error) {
	r, err := scanSearch(s.db.QueryRowContext(ctx, `
		SELECT id, location, codes, names, status, created_at
		FROM searches
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, carecost.Errorf(carecost.ENOTFOUND, "search not found")
	}
	if err != nil {
		return nil, err
	}

	hospitals, ids, err := s.findHospitalResults(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachCandidates(ctx, id, hospitals, ids); err != nil {
		return nil, err
	}
	r.Hospitals = hospitals
	return r, nil
}

// ListSearches returns saved searches newest first, without hospitals.
func (s *ResultStore) ListSearches(ctx context.Context) ([]*carecost.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location, codes, names, status, created_at
		FROM searches
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var searches []*carecost.SearchResult
	for rows.Next() {
		r, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, r)
	}
	return searches, rows.Err()
}

// FindBestPrice returns the lowest stored price for code. Ties go to the
// newest search. PDF references never count.
func (s *ResultStore) FindBestPrice(ctx context.Context, code string) (*carecost.BestPrice, error) {
	var (
		best      carecost.BestPrice
		h         carecost.Hospital
		lat, lon  sql.NullFloat64
		method    string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT c.code, c.value, c.currency, c.source_url, c.context, c.method,
			h.name, h.address, h.phone, h.website, h.lat, h.lon, h.distance,
			s.id, s.location, s.created_at
		FROM candidates c
		JOIN hospital_results h ON h.id = c.hospital_result_id
		JOIN searches s ON s.id = h.search_id
		WHERE c.code = ? AND c.method != ?
		ORDER BY c.value ASC, s.created_at DESC
		LIMIT 1
	`, code, string(carecost.MethodPDFReference)).Scan(
		&best.Candidate.Code, &best.Candidate.Value, &best.Candidate.Currency, &best.Candidate.SourceURL, &best.Candidate.Context, &method,
		&h.Name, &h.Address, &h.Phone, &h.Website, &lat, &lon, &h.Distance,
		&best.SearchID, &best.Location, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, carecost.Errorf(carecost.ENOTFOUND, "no price stored for %s", code)
	}
	if err != nil {
		return nil, err
	}

	best.Candidate.Method = carecost.Method(method)
	if lat.Valid && lon.Valid {
		h.Location = &carecost.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	}
	best.Hospital = &h
	if best.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &best, nil
}

func scanSearch(row scanner) (*carecost.SearchResult, error) {
	var (
		r         carecost.SearchResult
		codes     string
		names     string
		status    string
		createdAt string
	)
	if err := row.Scan(&r.ID, &r.Location, &codes, &names, &status, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(codes), &r.Codes); err != nil {
		return nil, fmt.Errorf("failed to parse codes: %w", err)
	}
	if err := json.Unmarshal([]byte(names), &r.Names); err != nil {
		return nil, fmt.Errorf("failed to parse names: %w", err)
	}
	if len(r.Names) == 0 {
		r.Names = nil
	}
	r.Status = carecost.SearchStatus(status)
	var err error
	if r.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ResultStore) findHospitalResults(ctx context.Context, searchID string) ([]*carecost.HospitalResult, []int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, phone, website, lat, lon, distance, status, pdfs, stats, error
		FROM hospital_results
		WHERE search_id = ?
		ORDER BY position
	`, searchID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	hospitals := []*carecost.HospitalResult{}
	var ids []int64
	for rows.Next() {
		var (
			id          int64
			h           carecost.Hospital
			r           carecost.HospitalResult
			lat, lon    sql.NullFloat64
			status      string
			pdfs, stats string
		)
		if err := rows.Scan(&id, &h.Name, &h.Address, &h.Phone, &h.Website, &lat, &lon, &h.Distance,
			&status, &pdfs, &stats, &r.Err); err != nil {
			return nil, nil, err
		}
		if lat.Valid && lon.Valid {
			h.Location = &carecost.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
		}
		if err := json.Unmarshal([]byte(pdfs), &r.PDFs); err != nil {
			return nil, nil, fmt.Errorf("failed to parse pdfs: %w", err)
		}
		if err := json.Unmarshal([]byte(stats), &r.Stats); err != nil {
			return nil, nil, fmt.Errorf("failed to parse stats: %w", err)
		}
		r.Hospital = &h
		r.Status = carecost.HospitalStatus(status)
		hospitals = append(hospitals, &r)
		ids = append(ids, id)
	}
	return hospitals, ids, rows.Err()
}

func (s *ResultStore) attachCandidates(ctx context.Context, searchID string, hospitals []*carecost.HospitalResult, ids []int64) error {
	index := make(map[int64]*carecost.HospitalResult, len(ids))
	for i, id := range ids {
		index[id] = hospitals[i]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.hospital_result_id, c.code, c.value, c.currency, c.source_url, c.context, c.method
		FROM candidates c
		JOIN hospital_results h ON h.id = c.hospital_result_id
		WHERE h.search_id = ?
		ORDER BY c.hospital_result_id, c.position
	`, searchID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			c      carecost.PriceCandidate
			method string
		)
		if err := rows.Scan(&id, &c.Code, &c.Value, &c.Currency, &c.SourceURL, &c.Context, &method); err != nil {
			return err
		}
		c.Method = carecost.Method(method)
		if h := index[id]; h != nil {
			h.Candidates = append(h.Candidates, c)
		}
	}
	return rows.Err()
}
