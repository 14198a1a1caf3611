package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arenaops/bracket-engine/models"
	"github.com/lib/pq"
)

// PostgresTournamentStore keeps each tournament as a single JSONB document.
// Update runs the mutation inside a transaction with SELECT ... FOR UPDATE on
// the one row, which is the single-document read-modify-write the engine
// relies on.
type PostgresTournamentStore struct {
	db *sql.DB
}

func NewPostgresTournamentStore(db *sql.DB) *PostgresTournamentStore {
	return &PostgresTournamentStore{db: db}
}

func (s *PostgresTournamentStore) Create(ctx context.Context, t *models.Tournament) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal tournament %s: %w", t.ID, err)
	}
	query := `
		INSERT INTO tournaments (id, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = s.db.ExecContext(ctx, query, t.ID, string(t.Status), doc, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrTournamentConflict
		}
		return err
	}
	return nil
}

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t := &models.Tournament{}
	if err := json.Unmarshal(doc, t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tournament document: %w", err)
	}
	return t, nil
}

func (s *PostgresTournamentStore) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	return scanTournament(s.db.QueryRowContext(ctx, `SELECT doc FROM tournaments WHERE id = $1`, id))
}

func (s *PostgresTournamentStore) List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]*models.Tournament, error) {
	query := `SELECT doc FROM tournaments WHERE 1=1`
	args := []interface{}{}
	argID := 1
	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, string(*status))
		argID++
	}
	query += " ORDER BY created_at"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Tournament{}
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresTournamentStore) Update(ctx context.Context, id string, mutate func(*models.Tournament) error) (*models.Tournament, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	t, err := scanTournament(tx.QueryRowContext(ctx, `SELECT doc FROM tournaments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if err := mutate(t); err != nil {
		return nil, err
	}

	doc, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tournament %s: %w", id, err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE tournaments SET status = $1, doc = $2, updated_at = $3 WHERE id = $4`,
		string(t.Status), doc, t.UpdatedAt, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tournament update: %w", err)
	}
	return t, nil
}

func (s *PostgresTournamentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (s *PostgresTournamentStore) ListArchivedBefore(ctx context.Context, cutoff time.Time) ([]*models.Tournament, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM tournaments WHERE status = $1 AND updated_at < $2`,
		string(models.StatusArchived), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type PostgresTicketStore struct {
	db *sql.DB
}

func NewPostgresTicketStore(db *sql.DB) *PostgresTicketStore {
	return &PostgresTicketStore{db: db}
}

func (s *PostgresTicketStore) Create(ctx context.Context, t *models.Ticket) error {
	query := `
		INSERT INTO tickets (code, user_id, competition_id, round_id, match_id, valid, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		t.Code, t.UserID, t.CompetitionID, t.RoundID, t.MatchID, t.Valid, t.IssuedAt, t.ExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrTicketConflict
		}
		return err
	}
	return nil
}

func (s *PostgresTicketStore) GetByCode(ctx context.Context, code string) (*models.Ticket, error) {
	query := `
		SELECT code, user_id, competition_id, round_id, match_id, valid, issued_at, expires_at
		FROM tickets WHERE code = $1`
	t := &models.Ticket{}
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&t.Code, &t.UserID, &t.CompetitionID, &t.RoundID, &t.MatchID, &t.Valid, &t.IssuedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *PostgresTicketStore) SetValid(ctx context.Context, code string, valid bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tickets SET valid = $1 WHERE code = $2`, valid, code)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTicketNotFound)
}

func (s *PostgresTicketStore) CountActiveByCompetition(ctx context.Context, competitionID string, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE competition_id = $1 AND valid = TRUE AND expires_at > $2`,
		competitionID, now).Scan(&n)
	return n, err
}

type PostgresDisputeStore struct {
	db *sql.DB
}

func NewPostgresDisputeStore(db *sql.DB) *PostgresDisputeStore {
	return &PostgresDisputeStore{db: db}
}

const disputeColumns = `id, tournament_id, match_id, reported_by, reason, description, status, created_at, resolved_at, resolved_by, resolution`

func scanDispute(row interface{ Scan(...interface{}) error }) (*models.MatchDispute, error) {
	d := &models.MatchDispute{}
	err := row.Scan(&d.ID, &d.TournamentID, &d.MatchID, &d.ReportedBy, &d.Reason, &d.Description,
		&d.Status, &d.CreatedAt, &d.ResolvedAt, &d.ResolvedBy, &d.Resolution)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *PostgresDisputeStore) Create(ctx context.Context, d *models.MatchDispute) error {
	query := `
		INSERT INTO disputes (` + disputeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.TournamentID, d.MatchID, d.ReportedBy, d.Reason, d.Description,
		string(d.Status), d.CreatedAt, d.ResolvedAt, d.ResolvedBy, d.Resolution)
	return err
}

func (s *PostgresDisputeStore) GetByID(ctx context.Context, id string) (*models.MatchDispute, error) {
	return scanDispute(s.db.QueryRowContext(ctx,
		`SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id))
}

func (s *PostgresDisputeStore) listDisputes(ctx context.Context, query string, args ...interface{}) ([]*models.MatchDispute, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MatchDispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresDisputeStore) ListByMatch(ctx context.Context, matchID string) ([]*models.MatchDispute, error) {
	return s.listDisputes(ctx,
		`SELECT `+disputeColumns+` FROM disputes WHERE match_id = $1 ORDER BY created_at`, matchID)
}

func (s *PostgresDisputeStore) ListOpenByTournament(ctx context.Context, tournamentID string) ([]*models.MatchDispute, error) {
	return s.listDisputes(ctx,
		`SELECT `+disputeColumns+` FROM disputes WHERE tournament_id = $1 AND status IN ($2, $3) ORDER BY created_at`,
		tournamentID, string(models.DisputeOpen), string(models.DisputeUnderReview))
}

func (s *PostgresDisputeStore) Update(ctx context.Context, id string, mutate func(*models.MatchDispute) error) (*models.MatchDispute, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	d, err := scanDispute(tx.QueryRowContext(ctx,
		`SELECT `+disputeColumns+` FROM disputes WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if err := mutate(d); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE disputes
		SET status = $1, resolved_at = $2, resolved_by = $3, resolution = $4
		WHERE id = $5`,
		string(d.Status), d.ResolvedAt, d.ResolvedBy, d.Resolution, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit dispute update: %w", err)
	}
	return d, nil
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
