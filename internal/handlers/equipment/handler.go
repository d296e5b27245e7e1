package equipment

import (
	"net/http"

	"rentgear/infras/otel"
	"rentgear/internal/domains/equipment/model"
	"rentgear/internal/domains/equipment/service"
	"rentgear/shared"
	"rentgear/shared/constant"
	gDto "rentgear/shared/dto"
	"rentgear/shared/failure"
	"rentgear/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Equipment
	otel    otel.Otel
}

func New(service service.Equipment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/equipment", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetEquipment)
		routerGroup.Get("/{id}", handler.GetEquipmentByID)
		routerGroup.Post("/{id}/photo", handler.UploadPhoto)
	})
}

// GetEquipment retrieves equipment items.
// @Summary Get all equipment
// @Description Retrieve equipment with optional filtering and pagination.
// @Tags Equipment
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param owner_id query string false "Filter by owner"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} response.Data[dto.GetEquipmentResponse] "List of equipment"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/equipment [get]
func (handler *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEquipment")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldName,
				Operator: gDto.FilterOperatorLike,
				Value:    r.URL.Query().Get(model.FieldName),
				Table:    model.TableName,
			},
		},
	}

	if ownerID := r.URL.Query().Get(model.FieldOwnerID); ownerID != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldOwnerID,
			Operator: gDto.FilterOperatorEq,
			Value:    ownerID,
			Table:    model.TableName,
		})
	}

	if active := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	equipment, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get equipment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Equipment retrieved successfully")

	response.WithJSON(w, http.StatusOK, equipment)
}

// GetEquipmentByID retrieves an equipment item by its ID.
// @Summary Get equipment by ID
// @Description Retrieve an equipment item by its unique identifier.
// @Tags Equipment
// @Accept json
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Data[dto.EquipmentResponse] "Equipment details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/equipment/{id} [get]
func (handler *Handler) GetEquipmentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEquipmentByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	equipment, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get equipment by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Equipment retrieved successfully")

	response.WithJSON(w, http.StatusOK, equipment)
}

// UploadPhoto replaces an equipment item's photo.
// @Summary Upload an equipment photo
// @Description Upload a photo for an equipment item owned by the caller.
// @Tags Equipment
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Equipment ID"
// @Param file formData file true "Photo file"
// @Success 200 {object} response.Data[dto.UploadPhotoResponse] "Photo uploaded"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/equipment/{id}/photo [post]
// @Security BearerAuth
func (handler *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadEquipmentPhoto")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	file, fileHeader, err := r.FormFile(constant.FormFile)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read photo file")

		response.WithError(w, failure.BadRequestFromString("photo file is required"))

		return
	}
	defer file.Close()

	res, err := handler.service.UploadPhoto(ctx, id, file, fileHeader)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload equipment photo")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Equipment photo uploaded by user " + user)

	response.WithJSON(w, http.StatusOK, res)
}
