package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"rentgear/infras/otel"
	"rentgear/infras/postgres"
	"rentgear/internal/domains/equipment/model"
	gDto "rentgear/shared/dto"
	gRepo "rentgear/shared/repository"
)

type Equipment interface {
	Insert(ctx context.Context, model model.Equipment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Equipment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Equipment, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Equipment]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Equipment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Equipment](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
