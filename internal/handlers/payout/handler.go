package payout

import (
	"net/http"

	"rentgear/infras/otel"
	"rentgear/internal/domains/payout/model/dto"
	"rentgear/internal/domains/payout/service"
	"rentgear/shared/constant"
	gDto "rentgear/shared/dto"
	"rentgear/shared/validator"
	"rentgear/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payout
	otel    otel.Otel
}

func New(service service.Payout, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payouts", func(routerGroup chi.Router) {
		routerGroup.Post("/connect", handler.Connect)
		routerGroup.Post("/request", handler.Request)
		routerGroup.Get("/balance", handler.Balance)
		routerGroup.Get("/history", handler.History)
	})
}

// Connect provisions the caller's payout account.
// @Summary Connect a payout account
// @Description Create the caller's connected payout account if needed and return a fresh onboarding link.
// @Tags Payout
// @Accept json
// @Produce json
// @Success 200 {object} response.Data[dto.ConnectResponse] "Onboarding link"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payouts/connect [post]
// @Security BearerAuth
func (handler *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConnectPayoutAccount")
	defer scope.End()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	res, err := handler.service.Connect(ctx, user)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to connect payout account")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payout account connected for user " + user)

	response.WithJSON(w, http.StatusOK, res)
}

// Request releases the payout for a completed booking.
// @Summary Request a payout
// @Description Transfer the booking subtotal to the caller's connected account. The booking must be completed and paid, not yet paid out, and the payout account must be fully onboarded.
// @Tags Payout
// @Accept json
// @Produce json
// @Param request body dto.RequestPayoutRequest true "Booking to pay out"
// @Success 201 {object} response.Data[dto.PayoutResponse] "Payout created"
// @Failure 400 {object} response.Error "Booking not eligible or payout account incomplete"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Booking already paid out"
// @Failure 500 {object} response.Error
// @Router /v1/payouts/request [post]
// @Security BearerAuth
func (handler *Handler) Request(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RequestPayout")
	defer scope.End()

	var req dto.RequestPayoutRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	res, err := handler.service.Request(ctx, req.BookingID, user)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to request payout")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payout requested by user " + user)

	response.WithJSON(w, http.StatusCreated, res)
}

// Balance returns the caller's payout balance.
// @Summary Get payout balance
// @Description Retrieve the available and pending balance of the caller's connected payout account.
// @Tags Payout
// @Accept json
// @Produce json
// @Success 200 {object} response.Data[dto.BalanceResponse] "Payout balance"
// @Failure 400 {object} response.Error "Payout account incomplete"
// @Failure 500 {object} response.Error
// @Router /v1/payouts/balance [get]
// @Security BearerAuth
func (handler *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PayoutBalance")
	defer scope.End()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	res, err := handler.service.Balance(ctx, user)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payout balance")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// History lists the caller's payouts.
// @Summary Get payout history
// @Description Retrieve the caller's payouts with pagination.
// @Tags Payout
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetPayoutsResponse] "List of payouts"
// @Failure 500 {object} response.Error
// @Router /v1/payouts/history [get]
// @Security BearerAuth
func (handler *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PayoutHistory")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	res, err := handler.service.History(ctx, user, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payout history")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
