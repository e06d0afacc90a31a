package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pubky-garden/pubky-playground/internal/domain"
	"github.com/pubky-garden/pubky-playground/internal/infra/database/models"
	"github.com/pubky-garden/pubky-playground/internal/usecase"
)

var tracer = otel.Tracer("repository/record")

type RecordRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewRecordRepository(db *gorm.DB, mc *memcache.Client) *RecordRepository {
	return &RecordRepository{db: db, mc: mc}
}

// cacheKey hashes the identifier triple; memcached keys are limited to
// 250 bytes and owner keys plus identifiers come close enough to care.
func cacheKey(owner, kind, id string) string {
	sum := xxh3.HashString(owner + "/" + kind + "/" + id)
	return fmt.Sprintf("record:%016x", sum)
}

func (r *RecordRepository) Store(ctx context.Context, record domain.Record, dedupe bool) error {
	ctx, span := tracer.Start(ctx, "Record.Repository.Store")
	defer span.End()

	model := models.Record{
		Owner:    record.Owner,
		Kind:     record.Kind,
		RecordID: record.ID,
		URI:      record.URI,
		Content:  string(record.Content),
	}

	var onConflict clause.OnConflict
	if dedupe {
		// Content-addressed identifiers: identical content, identical
		// row. Re-submission is a no-op.
		onConflict = clause.OnConflict{DoNothing: true}
	} else {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "kind"}, {Name: "record_id"}},
			DoUpdates: clause.Assignments(map[string]any{"content": model.Content}),
		}
	}

	err := r.db.WithContext(ctx).Clauses(onConflict).Create(&model).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to create record row")
	}

	r.invalidate(record.Owner, record.Kind, record.ID)
	return nil
}

func (r *RecordRepository) Get(ctx context.Context, owner, kind, id string) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Record.Repository.Get")
	defer span.End()

	key := cacheKey(owner, kind, id)
	if r.mc != nil {
		if item, err := r.mc.Get(key); err == nil {
			var cached domain.Record
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var model models.Record
	err := r.db.WithContext(ctx).
		Where("owner = ? AND kind = ? AND record_id = ?", owner, kind, id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Record{}, domain.NotFoundError{Resource: "record"}
		}
		span.RecordError(err)
		return domain.Record{}, errors.Wrap(err, "failed to load record row")
	}

	record := toDomain(model)

	if r.mc != nil {
		if blob, err := json.Marshal(record); err == nil {
			r.mc.Set(&memcache.Item{Key: key, Value: blob, Expiration: 600})
		}
	}

	return record, nil
}

func (r *RecordRepository) List(ctx context.Context, owner, kind string, opts usecase.ListOptions) ([]domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Record.Repository.List")
	defer span.End()

	query := r.db.WithContext(ctx).
		Model(&models.Record{}).
		Where("owner = ? AND kind = ?", owner, kind)

	if opts.Reverse {
		if opts.Cursor != "" {
			query = query.Where("record_id < ?", opts.Cursor)
		}
		query = query.Order("record_id desc")
	} else {
		if opts.Cursor != "" {
			query = query.Where("record_id > ?", opts.Cursor)
		}
		query = query.Order("record_id asc")
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var rows []models.Record
	if err := query.Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to list record rows")
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toDomain(row))
	}
	return records, nil
}

func (r *RecordRepository) Tombstone(ctx context.Context, owner, kind, id string, content json.RawMessage) error {
	ctx, span := tracer.Start(ctx, "Record.Repository.Tombstone")
	defer span.End()

	result := r.db.WithContext(ctx).
		Model(&models.Record{}).
		Where("owner = ? AND kind = ? AND record_id = ?", owner, kind, id).
		Update("content", string(content))
	if result.Error != nil {
		span.RecordError(result.Error)
		return errors.Wrap(result.Error, "failed to tombstone record row")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "record"}
	}

	r.invalidate(owner, kind, id)
	return nil
}

func (r *RecordRepository) Delete(ctx context.Context, owner, kind, id string) error {
	ctx, span := tracer.Start(ctx, "Record.Repository.Delete")
	defer span.End()

	result := r.db.WithContext(ctx).
		Where("owner = ? AND kind = ? AND record_id = ?", owner, kind, id).
		Delete(&models.Record{})
	if result.Error != nil {
		span.RecordError(result.Error)
		return errors.Wrap(result.Error, "failed to delete record row")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "record"}
	}

	r.invalidate(owner, kind, id)
	return nil
}

func (r *RecordRepository) invalidate(owner, kind, id string) {
	if r.mc == nil {
		return
	}
	// The row is authoritative; a stale entry expires on its own, so a
	// failed delete is not worth surfacing.
	r.mc.Delete(cacheKey(owner, kind, id))
}

func toDomain(model models.Record) domain.Record {
	return domain.Record{
		Owner:   model.Owner,
		Kind:    model.Kind,
		ID:      model.RecordID,
		URI:     model.URI,
		Content: json.RawMessage(model.Content),
		CDate:   model.CDate,
	}
}
