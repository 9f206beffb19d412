package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hondurasarchive/backend/internal/models"
	"go.uber.org/zap"
)

// archiveRepository implements the archive store on MySQL
type archiveRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewArchiveRepository creates a new archive repository
func NewArchiveRepository(db *sql.DB, logger *zap.Logger) *archiveRepository {
	return &archiveRepository{
		db:     db,
		logger: logger,
	}
}

// RecordFilter is a validated archive listing filter. Empty fields do not filter.
type RecordFilter struct {
	Search   string
	Letter   string
	Category models.Category
}

const recordColumns = `id, names, category, event_date, location, birth_origin, country_of_origin,
	newspaper_name, page_number, transcription, family_search_id, image_url, image_ref,
	created_by, created_at, updated_at`

// Create inserts a new archive record
func (r *archiveRepository) Create(ctx context.Context, record *models.ArchiveRecord) error {
	names, err := models.EncodeNames(record.Names)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO archive_records (names, names_text, primary_name, category, event_date, location, birth_origin,
			country_of_origin, newspaper_name, page_number, transcription, family_search_id,
			image_url, image_ref, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC().Truncate(time.Second)
	result, err := r.db.ExecContext(ctx, query,
		names,
		namesText(record.Names),
		record.PrimaryName(),
		record.Category,
		record.EventDate,
		record.Location,
		record.BirthOrigin,
		record.CountryOfOrigin,
		record.NewspaperName,
		record.PageNumber,
		record.Transcription,
		record.FamilySearchID,
		record.ImageURL,
		record.ImageRef,
		nullableID(record.CreatedBy),
		now,
		now,
	)
	if err != nil {
		r.logger.Error("failed to create archive record", zap.Error(err))
		return fmt.Errorf("failed to create archive record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

// GetByID retrieves a record by id
func (r *archiveRepository) GetByID(ctx context.Context, id int64) (*models.ArchiveRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM archive_records WHERE id = ?`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get archive record", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get archive record: %w", err)
	}

	return record, nil
}

// List returns records matching the filter, newest first.
// Matching is case-insensitive through the column collation. Names are matched
// against names_text, never the JSON names column.
func (r *archiveRepository) List(ctx context.Context, filter RecordFilter) ([]models.ArchiveRecord, error) {
	var conditions []string
	var args []any

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		conditions = append(conditions,
			`(names_text LIKE ? OR birth_origin LIKE ? OR country_of_origin LIKE ? OR transcription LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if filter.Letter != "" {
		conditions = append(conditions, `primary_name LIKE ?`)
		args = append(args, escapeLike(filter.Letter)+"%")
	}
	if filter.Category != "" {
		conditions = append(conditions, `category = ?`)
		args = append(args, filter.Category)
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM archive_records
		%s
		ORDER BY created_at DESC, id DESC
	`, recordColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query archive records", zap.Error(err))
		return nil, fmt.Errorf("failed to query archive records: %w", err)
	}
	defer rows.Close()

	records := make([]models.ArchiveRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			r.logger.Error("failed to scan archive record", zap.Error(err))
			return nil, fmt.Errorf("failed to scan archive record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Stats returns the archive-wide record count and the creation time of the newest record
func (r *archiveRepository) Stats(ctx context.Context) (*models.ArchiveStats, error) {
	var stats models.ArchiveStats
	var lastUpdate sql.NullTime

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(created_at) FROM archive_records`).
		Scan(&stats.TotalCount, &lastUpdate)
	if err != nil {
		r.logger.Error("failed to get archive stats", zap.Error(err))
		return nil, fmt.Errorf("failed to get archive stats: %w", err)
	}

	if lastUpdate.Valid {
		t := lastUpdate.Time
		stats.LastUpdate = &t
	}

	return &stats, nil
}

// Update overwrites the descriptive fields and image of a record
func (r *archiveRepository) Update(ctx context.Context, record *models.ArchiveRecord) error {
	names, err := models.EncodeNames(record.Names)
	if err != nil {
		return err
	}

	query := `
		UPDATE archive_records
		SET names = ?, names_text = ?, primary_name = ?, category = ?, event_date = ?, location = ?, birth_origin = ?,
			country_of_origin = ?, newspaper_name = ?, page_number = ?, transcription = ?,
			family_search_id = ?, image_url = ?, image_ref = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC().Truncate(time.Second)
	result, err := r.db.ExecContext(ctx, query,
		names,
		namesText(record.Names),
		record.PrimaryName(),
		record.Category,
		record.EventDate,
		record.Location,
		record.BirthOrigin,
		record.CountryOfOrigin,
		record.NewspaperName,
		record.PageNumber,
		record.Transcription,
		record.FamilySearchID,
		record.ImageURL,
		record.ImageRef,
		now,
		record.ID,
	)
	if err != nil {
		r.logger.Error("failed to update archive record", zap.Error(err), zap.Int64("id", record.ID))
		return fmt.Errorf("failed to update archive record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	record.UpdatedAt = now
	return nil
}

// Delete removes a record
func (r *archiveRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM archive_records WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete archive record", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to delete archive record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListStoredNames returns the raw names column of every record
func (r *archiveRepository) ListStoredNames(ctx context.Context) ([]models.StoredNames, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, names FROM archive_records ORDER BY id`)
	if err != nil {
		r.logger.Error("failed to query stored names", zap.Error(err))
		return nil, fmt.Errorf("failed to query stored names: %w", err)
	}
	defer rows.Close()

	var stored []models.StoredNames
	for rows.Next() {
		var s models.StoredNames
		if err := rows.Scan(&s.ID, &s.Raw); err != nil {
			return nil, fmt.Errorf("failed to scan stored names: %w", err)
		}
		stored = append(stored, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stored, nil
}

// UpdateNames rewrites the names of a record without touching its other fields
func (r *archiveRepository) UpdateNames(ctx context.Context, id int64, names []string) error {
	encoded, err := models.EncodeNames(names)
	if err != nil {
		return err
	}

	var primary string
	if len(names) > 0 {
		primary = names[0]
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE archive_records SET names = ?, names_text = ?, primary_name = ? WHERE id = ?`,
		encoded, namesText(names), primary, id)
	if err != nil {
		r.logger.Error("failed to update names", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to update names: %w", err)
	}

	return nil
}

func scanRecord(row rowScanner) (*models.ArchiveRecord, error) {
	record := &models.ArchiveRecord{}
	var names string
	var createdBy sql.NullInt64

	err := row.Scan(
		&record.ID,
		&names,
		&record.Category,
		&record.EventDate,
		&record.Location,
		&record.BirthOrigin,
		&record.CountryOfOrigin,
		&record.NewspaperName,
		&record.PageNumber,
		&record.Transcription,
		&record.FamilySearchID,
		&record.ImageURL,
		&record.ImageRef,
		&createdBy,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Names = models.ParseNames(names)
	if createdBy.Valid {
		id := createdBy.Int64
		record.CreatedBy = &id
	}

	return record, nil
}

// namesText is the searchable form of a names list, one name per line
func namesText(names []string) string {
	return strings.Join(names, "\n")
}

// escapeLike escapes the LIKE wildcards of a user supplied term
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
