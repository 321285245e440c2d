package retention

import (
	"errors"
	"net/http"
	"strconv"

	"beautybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts the trigger and introspection endpoints.
// The caller is expected to wrap the group in admin auth.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	offers := rg.Group("/offers")
	{
		offers.POST("/run", h.RunBatch)
		offers.POST("/customers/:id/send", h.SendOffer)
		offers.GET("/customers/:id/pattern", h.GetPattern)
		offers.GET("/customers/:id/history", h.GetHistory)
	}
}

// RegisterPublicRoutes mounts the deep-link status transitions consumed by
// the web layer.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/offers/:token/click", h.MarkClicked)
	rg.POST("/offers/:token/booked", h.MarkBooked)
}

// SendOffer triggers the single-customer flow manually.
func (h *Handler) SendOffer(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	result, err := h.service.GenerateAndSendOffer(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "SEND_FAILED", "Failed to process offer")
		return
	}
	if !result.Success {
		response.Success(c, http.StatusOK, result)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// RunBatch triggers one automated batch run.
func (h *Handler) RunBatch(c *gin.Context) {
	result, err := h.service.ProcessAutomatedOffers(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "BATCH_FAILED", "Automated offer run failed")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GetPattern returns the customer's behavior profile for debugging/display.
func (h *Handler) GetPattern(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	profile, err := h.service.AnalyzeCustomerPattern(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "ANALYSIS_FAILED", "Failed to analyze customer pattern")
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// GetHistory returns the customer's past offers, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	offers, err := h.service.GetCustomerOffers(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get offer history")
		return
	}
	response.Success(c, http.StatusOK, offers)
}

func (h *Handler) MarkClicked(c *gin.Context) {
	offer, err := h.service.MarkOfferClicked(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleTransitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, offer)
}

func (h *Handler) MarkBooked(c *gin.Context) {
	offer, err := h.service.MarkOfferBooked(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleTransitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, offer)
}

func (h *Handler) customerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOfferNotFound):
		response.Error(c, http.StatusNotFound, "OFFER_NOT_FOUND", "Offer not found")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Offer status cannot move backwards")
	default:
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update offer status")
	}
}
