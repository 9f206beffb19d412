package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hondurasarchive/backend/internal/models"
	"github.com/hondurasarchive/backend/internal/repositories"
	"github.com/hondurasarchive/backend/internal/storage"
	"go.uber.org/zap"
)

// imageDeleteTimeout bounds a background image deletion
const imageDeleteTimeout = 30 * time.Second

// Column limits of archive_records, in characters
const (
	maxNameLength           = 255
	maxEventDateLength      = 100
	maxLocationLength       = 255
	maxBirthOriginLength    = 255
	maxCountryLength        = 100
	maxNewspaperNameLength  = 255
	maxPageNumberLength     = 50
	maxFamilySearchIDLength = 100
	// names and names_text are TEXT columns
	maxEncodedNamesBytes = 65535
)

// ArchiveRepository is the interface that wraps methods for archive_records table data access
type ArchiveRepository interface {
	// Method Create inserts a new record into the database.
	//
	// "record" parameter is used to create a new record, its ID and timestamps are filled in on success.
	//
	// If some error occurs during insertion, the error will be returned.
	Create(ctx context.Context, record *models.ArchiveRecord) error
	// Method GetByID retrieves a record by ID.
	//
	// If record with such ID does not exist, repositories.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int64) (*models.ArchiveRecord, error)
	// Method List retrieves records matching the filter, newest first.
	//
	// "filter" parameter narrows the result by search term, first letter and category. Empty fields are ignored.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	List(ctx context.Context, filter repositories.RecordFilter) ([]models.ArchiveRecord, error)
	// Method Stats returns the number of records in the archive and the creation time of the newest one.
	Stats(ctx context.Context) (*models.ArchiveStats, error)
	// Method Update overwrites every descriptive field and the image of a record.
	//
	// If record with such ID does not exist, repositories.ErrNotFound will be returned.
	Update(ctx context.Context, record *models.ArchiveRecord) error
	// Method Delete removes a record.
	//
	// If record with such ID does not exist, repositories.ErrNotFound will be returned.
	Delete(ctx context.Context, id int64) error
	// Method ListStoredNames returns the raw names column of every record.
	ListStoredNames(ctx context.Context) ([]models.StoredNames, error)
	// Method UpdateNames rewrites the names of a record.
	UpdateNames(ctx context.Context, id int64, names []string) error
}

// ImageStore is the interface that wraps the image host operations used by the archive
type ImageStore interface {
	// Method Upload stores an image under a key derived from "name" and returns its URL and reference.
	//
	// If the image host fails, the error will be returned together with "nil" value.
	Upload(ctx context.Context, name string, img *models.ImageUpload) (*models.StoredImage, error)
	// Method Delete removes an image by its reference. Deleting a missing image is not an error.
	Delete(ctx context.Context, ref string) error
}

// archiveService implements ArchiveService
type archiveService struct {
	repo           ArchiveRepository
	images         ImageStore
	defaultCountry string
	logger         *zap.Logger

	// mu guards closed and pending.Add
	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewArchiveService creates a new archive service
func NewArchiveService(repo ArchiveRepository, images ImageStore, defaultCountry string, logger *zap.Logger) *archiveService {
	return &archiveService{
		repo:           repo,
		images:         images,
		defaultCountry: defaultCountry,
		logger:         logger,
	}
}

// CreateRecord validates and stores a new record, uploading its image first when one is supplied
func (s *archiveService) CreateRecord(ctx context.Context, req *models.CreateRecordRequest, image *models.ImageUpload, createdBy *int64) (*models.ArchiveRecord, error) {
	names := models.CleanNames(req.Names)
	if len(names) == 0 {
		return nil, validationError("at least one name is required")
	}

	category, ok := models.ParseCategory(req.Category)
	if !ok {
		return nil, validationError("invalid category %q", req.Category)
	}

	if image != nil && !storage.IsAllowedImageType(image.ContentType) {
		return nil, validationError("unsupported image type %q", image.ContentType)
	}

	country := strings.TrimSpace(req.CountryOfOrigin)
	if country == "" {
		country = s.defaultCountry
	}

	record := &models.ArchiveRecord{
		Names:           names,
		Category:        category,
		EventDate:       strings.TrimSpace(req.EventDate),
		Location:        strings.TrimSpace(req.Location),
		BirthOrigin:     strings.TrimSpace(req.BirthOrigin),
		CountryOfOrigin: country,
		NewspaperName:   strings.TrimSpace(req.NewspaperName),
		PageNumber:      strings.TrimSpace(req.PageNumber),
		Transcription:   strings.TrimSpace(req.Transcription),
		FamilySearchID:  strings.TrimSpace(req.FamilySearchID),
		CreatedBy:       createdBy,
	}

	if err := validateRecordFields(record); err != nil {
		return nil, err
	}

	if image != nil {
		stored, err := s.images.Upload(ctx, names[0], image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		record.ImageURL = stored.URL
		record.ImageRef = stored.Ref
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if record.ImageRef != "" {
			if delErr := s.images.Delete(ctx, record.ImageRef); delErr != nil {
				s.logger.Warn("failed to remove image of unsaved record",
					zap.String("imageRef", record.ImageRef),
					zap.Error(delErr),
				)
			}
		}
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	s.logger.Info("archive record created", zap.Int64("id", record.ID), zap.String("category", string(record.Category)))
	return record, nil
}

// ListRecords returns the filtered listing with the archive-wide count and last update time
func (s *archiveService) ListRecords(ctx context.Context, filter models.ListFilter) (*models.ListResult, error) {
	repoFilter := repositories.RecordFilter{
		Search: strings.TrimSpace(filter.Search),
	}

	if letter := strings.TrimSpace(filter.Letter); letter != "" {
		r, size := utf8.DecodeRuneInString(letter)
		if size != len(letter) || !unicode.IsLetter(r) {
			return nil, validationError("letter must be a single letter")
		}
		repoFilter.Letter = letter
	}

	if raw := strings.TrimSpace(filter.Category); raw != "" {
		category, ok := models.ParseCategory(raw)
		if !ok {
			return nil, validationError("invalid category %q", raw)
		}
		repoFilter.Category = category
	}

	items, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get archive stats: %w", err)
	}

	return &models.ListResult{
		Items:      items,
		TotalCount: stats.TotalCount,
		LastUpdate: stats.LastUpdate,
	}, nil
}

// GetRecord returns a single record
func (s *archiveService) GetRecord(ctx context.Context, id int64) (*models.ArchiveRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: record %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// UpdateRecord applies a partial update. A supplied image replaces the stored one,
// the old image is removed once the record points at the new one.
func (s *archiveService) UpdateRecord(ctx context.Context, id int64, req *models.UpdateRecordRequest, image *models.ImageUpload) (*models.ArchiveRecord, error) {
	if req.IsEmpty() && image == nil {
		return nil, validationError("nothing to update")
	}
	if image != nil && !storage.IsAllowedImageType(image.ContentType) {
		return nil, validationError("unsupported image type %q", image.ContentType)
	}

	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyRecordUpdate(record, req); err != nil {
		return nil, err
	}
	if record.CountryOfOrigin == "" {
		record.CountryOfOrigin = s.defaultCountry
	}
	if err := validateRecordFields(record); err != nil {
		return nil, err
	}

	oldRef := record.ImageRef
	var newRef string
	if image != nil {
		stored, err := s.images.Upload(ctx, record.PrimaryName(), image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		record.ImageURL = stored.URL
		record.ImageRef = stored.Ref
		newRef = stored.Ref
	}

	if err := s.repo.Update(ctx, record); err != nil {
		if newRef != "" {
			s.deleteImageAsync(newRef)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: record %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	if newRef != "" && oldRef != "" {
		s.deleteImageAsync(oldRef)
	}

	s.logger.Info("archive record updated", zap.Int64("id", id))
	return record, nil
}

func applyRecordUpdate(record *models.ArchiveRecord, req *models.UpdateRecordRequest) error {
	if req.Names != nil {
		names := models.CleanNames(req.Names)
		if len(names) == 0 {
			return validationError("at least one name is required")
		}
		record.Names = names
	}
	if req.Category != nil {
		category, ok := models.ParseCategory(*req.Category)
		if !ok {
			return validationError("invalid category %q", *req.Category)
		}
		record.Category = category
	}

	setText := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setText(&record.EventDate, req.EventDate)
	setText(&record.Location, req.Location)
	setText(&record.BirthOrigin, req.BirthOrigin)
	setText(&record.CountryOfOrigin, req.CountryOfOrigin)
	setText(&record.NewspaperName, req.NewspaperName)
	setText(&record.PageNumber, req.PageNumber)
	setText(&record.Transcription, req.Transcription)
	setText(&record.FamilySearchID, req.FamilySearchID)

	return nil
}

func validateRecordFields(record *models.ArchiveRecord) error {
	for _, name := range record.Names {
		if utf8.RuneCountInString(name) > maxNameLength {
			return validationError("name must be at most %d characters long", maxNameLength)
		}
	}
	encoded, err := models.EncodeNames(record.Names)
	if err != nil {
		return err
	}
	if len(encoded) > maxEncodedNamesBytes {
		return validationError("names are too long")
	}

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"eventDate", record.EventDate, maxEventDateLength},
		{"location", record.Location, maxLocationLength},
		{"birthOrigin", record.BirthOrigin, maxBirthOriginLength},
		{"countryOfOrigin", record.CountryOfOrigin, maxCountryLength},
		{"newspaperName", record.NewspaperName, maxNewspaperNameLength},
		{"pageNumber", record.PageNumber, maxPageNumberLength},
		{"familySearchId", record.FamilySearchID, maxFamilySearchIDLength},
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return validationError("%s must be at most %d characters long", f.name, f.max)
		}
	}

	return nil
}

// DeleteRecord removes a record, then deletes its image in the background
func (s *archiveService) DeleteRecord(ctx context.Context, id int64) error {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: record %d", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}

	if record.ImageRef != "" {
		s.deleteImageAsync(record.ImageRef)
	}

	s.logger.Info("archive record deleted", zap.Int64("id", id))
	return nil
}

// deleteImageAsync removes an image without blocking the caller. Failures are only logged.
// Once Wait has been called the deletion runs on the caller's goroutine.
func (s *archiveService) deleteImageAsync(ref string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.deleteImage(ref)
		return
	}
	s.pending.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.pending.Done()
		s.deleteImage(ref)
	}()
}

func (s *archiveService) deleteImage(ref string) {
	ctx, cancel := context.WithTimeout(context.Background(), imageDeleteTimeout)
	defer cancel()

	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("failed to delete image", zap.String("imageRef", ref), zap.Error(err))
	}
}

// Wait blocks until every background image deletion has finished.
// Deletions requested afterwards are no longer backgrounded.
func (s *archiveService) Wait() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.pending.Wait()
}

// NormalizeNames rewrites every record whose stored names are not in canonical form.
// Returns the number of records changed.
func (s *archiveService) NormalizeNames(ctx context.Context) (int, error) {
	stored, err := s.repo.ListStoredNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored names: %w", err)
	}

	changed := 0
	for _, row := range stored {
		names := models.ParseNames(row.Raw)
		if len(names) == 0 {
			s.logger.Warn("record has no usable names", zap.Int64("id", row.ID))
			continue
		}

		canonical, err := models.EncodeNames(names)
		if err != nil {
			return changed, err
		}
		if canonical == row.Raw {
			continue
		}

		if err := s.repo.UpdateNames(ctx, row.ID, names); err != nil {
			return changed, fmt.Errorf("failed to normalize record %d: %w", row.ID, err)
		}
		changed++
	}

	s.logger.Info("names normalized", zap.Int("records", len(stored)), zap.Int("changed", changed))
	return changed, nil
}
