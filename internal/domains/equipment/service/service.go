package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"rentgear/config"
	"rentgear/infras/otel"
	"rentgear/infras/s3"
	"rentgear/internal/domains/equipment/model"
	"rentgear/internal/domains/equipment/model/dto"
	"rentgear/internal/domains/equipment/repository"
	"rentgear/shared"
	"rentgear/shared/cache"
	"rentgear/shared/constant"
	gDto "rentgear/shared/dto"
	"rentgear/shared/failure"
	"rentgear/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetEquipment    = "equipment:get"
	cacheGetAllEquipment = "equipment:gets"
	cacheCountEquipment  = "equipment:count"
)

type Equipment interface {
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetEquipmentResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.EquipmentResponse, error)
	UploadPhoto(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (dto.UploadPhotoResponse, error)
}

type serviceImpl struct {
	repo  repository.Equipment
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
}

func New(repo repository.Equipment, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Equipment {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetEquipmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAllEquipment")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllEquipment, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for equipment list")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count equipment")

		return res, fmt.Errorf("failed to count equipment: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get equipment")

		return res, fmt.Errorf("failed to get equipment: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save equipment list to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CountEquipment")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountEquipment, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for equipment count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count equipment")

		return res, fmt.Errorf("failed to count equipment: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save equipment count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.EquipmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetEquipment")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetEquipment, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for equipment")

		return res, nil
	}

	equipment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get equipment")

		return res, fmt.Errorf("failed to get equipment: %w", err)
	}

	if equipment.ID == constant.Empty {
		return res, failure.NotFound("equipment not found") // nolint:wrapcheck
	}

	res.FromModel(equipment)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save equipment to cache")
		}
	}()

	return res, nil
}

// UploadPhoto replaces the equipment photo. Only the owner may upload;
// the previous object is removed from storage after the row update
// succeeds.
func (s *serviceImpl) UploadPhoto(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (res dto.UploadPhotoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadEquipmentPhoto")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	equipment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get equipment")

		return res, fmt.Errorf("failed to get equipment: %w", err)
	}

	if equipment.ID == constant.Empty {
		return res, failure.NotFound("equipment not found") // nolint:wrapcheck
	}

	if equipment.OwnerID != user {
		return res, failure.Forbidden("only the owner can update equipment photos") // nolint:wrapcheck
	}

	bucketName := s.cfg.External.S3.BucketName
	filename := uuid.NewString()

	parts := strings.Split(header.Filename, ".")
	if len(parts) > 1 {
		filename = fmt.Sprintf("%s.%s", filename, parts[len(parts)-1])
	}

	url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, file, header, filename)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload equipment photo")

		return res, fmt.Errorf("failed to upload equipment photo: %w", err)
	}

	err = s.repo.Update(ctx, map[string]any{
		model.FieldPhotoURL:      url,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to update equipment photo url")

		_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, filename)

		return res, fmt.Errorf("failed to update equipment photo url: %w", err)
	}

	if equipment.PhotoURL != constant.Empty {
		oldObjectName := s.s3.GetObjectNameFromURL(bucketName, equipment.PhotoURL)
		if oldObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, oldObjectName)
		}
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetEquipment, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete equipment cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllEquipment, cacheCountEquipment)
	}()

	return dto.UploadPhotoResponse{PhotoURL: url}, nil
}
