package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"rentgear/config"
	"rentgear/infras/otel/mocks"
	s3Mocks "rentgear/infras/s3/mocks"
	equipmentMocks "rentgear/internal/domains/equipment/mocks"
	"rentgear/internal/domains/equipment/model"
	"rentgear/internal/domains/equipment/service"
	cacheMocks "rentgear/shared/cache/mocks"
	"rentgear/shared/constant"
	"rentgear/shared/failure"
)

func newEquipmentService(ctrl *gomock.Controller) (service.Equipment, *equipmentMocks.MockEquipment, *cacheMocks.MockRedisCache, *s3Mocks.MockS3) {
	mockRepo := equipmentMocks.NewMockEquipment(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockS3 := s3Mocks.NewMockS3(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.External.S3.BucketName = "rentgear-assets"

	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, cfg, mockCache, mocks.NewOtel(), mockS3)

	return svc, mockRepo, mockCache, mockS3
}

func TestEquipmentService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(repo *equipmentMocks.MockEquipment, cache *cacheMocks.MockRedisCache)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "existing equipment",
			setupMock: func(repo *equipmentMocks.MockEquipment, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Equipment{ID: "equipment-1", OwnerID: "owner-1", Name: "Mountain bike"}, nil)
			},
		},
		{
			name: "cache hit skips the repository",
			setupMock: func(repo *equipmentMocks.MockEquipment, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "unknown equipment",
			setupMock: func(repo *equipmentMocks.MockEquipment, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Equipment{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, repo, cache, _ := newEquipmentService(ctrl)
			tt.setupMock(repo, cache)

			_, err := svc.Get(context.Background(), "equipment-1")

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestEquipmentService_UploadPhoto(t *testing.T) {
	header := &multipart.FileHeader{Filename: "photo.jpg"}

	tests := []struct {
		name      string
		userID    string
		setupMock func(repo *equipmentMocks.MockEquipment, s3 *s3Mocks.MockS3)
		wantErr   bool
		wantCode  int
	}{
		{
			name:   "owner uploads a new photo",
			userID: "owner-1",
			setupMock: func(repo *equipmentMocks.MockEquipment, s3 *s3Mocks.MockS3) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Equipment{ID: "equipment-1", OwnerID: "owner-1"}, nil)
				s3.EXPECT().
					UploadFile(gomock.Any(), "rentgear-assets", model.EntityName, gomock.Any(), header, gomock.Any()).
					Return("https://cdn.example.com/equipment/photo.jpg", nil)
				repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name:   "non-owner is rejected",
			userID: "renter-1",
			setupMock: func(repo *equipmentMocks.MockEquipment, s3 *s3Mocks.MockS3) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Equipment{ID: "equipment-1", OwnerID: "owner-1"}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusForbidden,
		},
		{
			name:   "failed row update rolls back the uploaded object",
			userID: "owner-1",
			setupMock: func(repo *equipmentMocks.MockEquipment, s3 *s3Mocks.MockS3) {
				repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Equipment{ID: "equipment-1", OwnerID: "owner-1"}, nil)
				s3.EXPECT().
					UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("https://cdn.example.com/equipment/photo.jpg", nil)
				repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
				s3.EXPECT().
					DeleteFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, repo, _, mockS3 := newEquipmentService(ctrl)
			tt.setupMock(repo, mockS3)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, tt.userID)
			res, err := svc.UploadPhoto(ctx, "equipment-1", nil, header)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "https://cdn.example.com/equipment/photo.jpg", res.PhotoURL)
		})
	}
}
