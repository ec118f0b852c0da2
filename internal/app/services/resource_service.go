package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/unirecords/internal/app/models"
	"github.com/yigit/unirecords/internal/app/repositories"
	"github.com/yigit/unirecords/internal/pkg/apperrors"
	"github.com/yigit/unirecords/internal/pkg/dberrors"
	"github.com/yigit/unirecords/internal/pkg/fieldmap"
	"github.com/yigit/unirecords/internal/pkg/querylog"
	"github.com/yigit/unirecords/internal/pkg/validation"
)

// ResourceService implements list, get, create, update and delete for one
// schema. Inputs and outputs are wire records keyed by camelCase names.
type ResourceService struct {
	repo      *repositories.ResourceRepository
	schema    models.Schema
	validator *validation.Validator
}

// NewResourceService creates a service over repo.
func NewResourceService(repo *repositories.ResourceRepository, validator *validation.Validator) *ResourceService {
	return &ResourceService{
		repo:      repo,
		schema:    repo.Schema(),
		validator: validator,
	}
}

// Schema returns the schema served by the service.
func (s *ResourceService) Schema() models.Schema {
	return s.schema
}

// List returns every record. The slice is never nil.
func (s *ResourceService) List(ctx context.Context, session *querylog.Session) ([]fieldmap.Record, error) {
	rows, err := s.repo.List(ctx, session)
	if err != nil {
		return nil, s.storeError(ctx, "list", err)
	}
	return fieldmap.FormatRecords(rows), nil
}

// Get returns the record with key.
func (s *ResourceService) Get(ctx context.Context, session *querylog.Session, key any) (fieldmap.Record, error) {
	row, err := s.repo.FindByKey(ctx, session, key)
	if err != nil {
		return nil, s.storeError(ctx, "get", err)
	}
	if row == nil {
		return nil, apperrors.NewResourceNotFoundError(s.schema.NotFoundMessage())
	}
	return fieldmap.FormatRecord(row), nil
}

// Create validates input, inserts it and returns the stored record. Fields
// omitted from input are stored as null.
func (s *ResourceService) Create(ctx context.Context, session *querylog.Session, input map[string]any) (fieldmap.Record, error) {
	if missing := s.validator.MissingFields(input, s.schema.Required()); len(missing) > 0 {
		zerolog.Ctx(ctx).Debug().Str("resource", s.schema.Plural).Strs("missing", missing).Msg("Create rejected")
		return nil, apperrors.NewBadRequestError(apperrors.MsgMissingFields)
	}

	fields := s.schema.InsertFields()
	values := make([]repositories.ColumnValue, 0, len(fields))
	for _, field := range fields {
		values = append(values, repositories.ColumnValue{
			Column: field.Column,
			Value:  field.Normalize(input[field.Wire]),
		})
	}

	key, err := s.repo.Insert(ctx, session, values)
	if err != nil {
		return nil, s.writeError(ctx, "create", err)
	}

	return s.reread(ctx, session, key)
}

// Update merges input over the stored record and writes every mutable field
// back. A field present in input, even as null, replaces the stored value.
func (s *ResourceService) Update(ctx context.Context, session *querylog.Session, key any, input map[string]any) (fieldmap.Record, error) {
	if len(input) == 0 {
		return nil, apperrors.NewBadRequestError(apperrors.MsgNoData)
	}

	stored, err := s.repo.FindByKey(ctx, session, key)
	if err != nil {
		return nil, s.storeError(ctx, "update", err)
	}
	if stored == nil {
		return nil, apperrors.NewResourceNotFoundError(s.schema.NotFoundMessage())
	}

	fields := s.schema.UpdateFields()
	values := make([]repositories.ColumnValue, 0, len(fields))
	for _, field := range fields {
		value, ok := input[field.Wire]
		if ok {
			value = field.Normalize(value)
		} else {
			value = stored[field.Column]
		}
		values = append(values, repositories.ColumnValue{Column: field.Column, Value: value})
	}

	if err := s.repo.Update(ctx, session, key, values); err != nil {
		return nil, s.writeError(ctx, "update", err)
	}

	return s.reread(ctx, session, key)
}

// Delete removes the record with key after checking that it exists.
func (s *ResourceService) Delete(ctx context.Context, session *querylog.Session, key any) error {
	stored, err := s.repo.FindByKey(ctx, session, key)
	if err != nil {
		return s.storeError(ctx, "delete", err)
	}
	if stored == nil {
		return apperrors.NewResourceNotFoundError(s.schema.NotFoundMessage())
	}

	if err := s.repo.Delete(ctx, session, key); err != nil {
		return s.writeError(ctx, "delete", err)
	}
	return nil
}

func (s *ResourceService) reread(ctx context.Context, session *querylog.Session, key any) (fieldmap.Record, error) {
	row, err := s.repo.FindByKey(ctx, session, key)
	if err != nil {
		return nil, s.storeError(ctx, "reread", err)
	}
	if row == nil {
		return nil, apperrors.NewResourceNotFoundError(s.schema.NotFoundMessage())
	}
	return fieldmap.FormatRecord(row), nil
}

// writeError classifies a failed write as a conflict or a store error.
func (s *ResourceService) writeError(ctx context.Context, op string, err error) error {
	if dberrors.IsUniqueViolation(err) {
		zerolog.Ctx(ctx).Info().Str("resource", s.schema.Plural).Str("op", op).Msg(s.schema.ConflictMessage)
		return apperrors.NewConflictError(s.schema.ConflictMessage, err)
	}
	return s.storeError(ctx, op, err)
}

func (s *ResourceService) storeError(ctx context.Context, op string, err error) error {
	zerolog.Ctx(ctx).Error().Err(err).Str("resource", s.schema.Plural).Str("op", op).Msg("Store operation failed")
	return apperrors.NewStoreError(err)
}
