package repository

import (
	"context"
	"rentgear/infras/otel"
	"rentgear/infras/postgres"
	"rentgear/internal/domains/notification/model"
	gDto "rentgear/shared/dto"
	gRepo "rentgear/shared/repository"
)

type Notification interface {
	Insert(ctx context.Context, model model.Notification) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Notification, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Notification]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Notification {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Notification](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
