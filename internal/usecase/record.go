package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/pubky-garden/pubky-playground"
	"github.com/pubky-garden/pubky-playground/crock32"
	"github.com/pubky-garden/pubky-playground/internal/domain"
	"github.com/pubky-garden/pubky-playground/specs"
)

var tracer = otel.Tracer("usecase/record")

type RecordUsecase struct {
	repo      RecordRepository
	events    EventPublisher
	namespace string
}

func NewRecordUsecase(repo RecordRepository, events EventPublisher, namespace string) *RecordUsecase {
	if namespace == "" {
		namespace = specs.Namespace
	}
	return &RecordUsecase{
		repo:      repo,
		events:    events,
		namespace: namespace,
	}
}

// Put runs the full acceptance pipeline for an incoming blob: parse,
// sanitize, verify the claimed identifier, then persist the sanitized
// form. The raw client bytes are never stored.
func (uc *RecordUsecase) Put(ctx context.Context, owner string, kind specs.Kind, id string, blob []byte) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Record.Usecase.Put")
	defer span.End()

	rec, err := specs.ParseRecord(kind, blob, id)
	if err != nil {
		span.RecordError(err)
		return domain.Record{}, err
	}

	content, err := json.Marshal(rec)
	if err != nil {
		span.RecordError(err)
		return domain.Record{}, errors.Wrap(err, "failed to marshal sanitized record")
	}

	id = crock32.Canonicalize(id)
	record := domain.Record{
		Owner:   owner,
		Kind:    string(kind),
		ID:      id,
		URI:     pubky.ComposePubkyURI(owner, uc.namespace, kind.Plural(), id),
		Content: content,
		CDate:   time.Now().UTC(),
	}

	if err := uc.repo.Store(ctx, record, kind.ContentAddressed()); err != nil {
		span.RecordError(err)
		return domain.Record{}, errors.Wrap(err, "failed to store record")
	}

	if err := uc.publish(ctx, pubky.EventOpPut, record); err != nil {
		span.RecordError(err)
	}

	return record, nil
}

func (uc *RecordUsecase) Get(ctx context.Context, owner string, kind specs.Kind, id string) (domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Record.Usecase.Get")
	defer span.End()

	return uc.repo.Get(ctx, owner, string(kind), crock32.Canonicalize(id))
}

func (uc *RecordUsecase) List(ctx context.Context, owner string, kind specs.Kind, opts ListOptions) ([]domain.Record, error) {
	ctx, span := tracer.Start(ctx, "Record.Usecase.List")
	defer span.End()

	return uc.repo.List(ctx, owner, string(kind), opts)
}

// Delete removes a record. Posts are tombstoned rather than dropped:
// other users may hold replies or tags pointing at them, so the row stays
// and its content becomes the deleted marker. Content-addressed kinds
// carry no relationships of their own and are dropped outright.
func (uc *RecordUsecase) Delete(ctx context.Context, owner string, kind specs.Kind, id string) error {
	ctx, span := tracer.Start(ctx, "Record.Usecase.Delete")
	defer span.End()

	id = crock32.Canonicalize(id)

	if kind.ContentAddressed() {
		if err := uc.repo.Delete(ctx, owner, string(kind), id); err != nil {
			span.RecordError(err)
			return err
		}
	} else {
		marker, err := json.Marshal(specs.Tombstone())
		if err != nil {
			span.RecordError(err)
			return errors.Wrap(err, "failed to marshal tombstone")
		}
		if err := uc.repo.Tombstone(ctx, owner, string(kind), id, marker); err != nil {
			span.RecordError(err)
			return err
		}
	}

	record := domain.Record{
		Owner: owner,
		Kind:  string(kind),
		ID:    id,
		URI:   pubky.ComposePubkyURI(owner, uc.namespace, kind.Plural(), id),
	}
	if err := uc.publish(ctx, pubky.EventOpDelete, record); err != nil {
		span.RecordError(err)
	}

	return nil
}

// publish is best effort: a realtime fan-out failure must not fail the
// write that already happened.
func (uc *RecordUsecase) publish(ctx context.Context, op string, record domain.Record) error {
	if uc.events == nil {
		return nil
	}
	return uc.events.Publish(ctx, pubky.Event{
		Op:        op,
		Owner:     record.Owner,
		Kind:      record.Kind,
		ID:        record.ID,
		URI:       record.URI,
		Timestamp: time.Now().UTC(),
	})
}
