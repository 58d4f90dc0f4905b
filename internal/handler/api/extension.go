package api

import (
	"errors"
	"net/http"

	reqdto "library-lending/internal/handler/dto/request"
	resdto "library-lending/internal/handler/dto/response"
	"library-lending/internal/handler/middleware"
	"library-lending/internal/usecase/commands"
	"library-lending/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ExtensionHandler struct {
	extensionCommands commands.ExtensionCommands
	extensionQueries  queries.ExtensionQueries
}

func NewExtensionHandler(extensionCommands commands.ExtensionCommands, extensionQueries queries.ExtensionQueries) *ExtensionHandler {
	return &ExtensionHandler{
		extensionCommands: extensionCommands,
		extensionQueries:  extensionQueries,
	}
}

// @Summary List pending extension requests
// @Description Oldest first, for working the approval queue in order
// @Tags extensions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ExtensionRequestResponse
// @Router /extensions/pending [get]
func (h *ExtensionHandler) ListPending(c *gin.Context) {
	views, err := h.extensionQueries.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromExtensionRequestViews(views))
}

// @Summary Count pending extension requests
// @Tags extensions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.PendingCountResponse
// @Router /extensions/pending/count [get]
func (h *ExtensionHandler) PendingCount(c *gin.Context) {
	count, err := h.extensionQueries.PendingCount(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.PendingCountResponse{Count: count})
}

// @Summary List own extension requests
// @Tags extensions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ExtensionRequestResponse
// @Router /extensions [get]
func (h *ExtensionHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	views, err := h.extensionQueries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromExtensionRequestViews(views))
}

// @Summary Get extension request
// @Tags extensions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Extension request ID"
// @Success 200 {object} resdto.ExtensionRequestResponse
// @Failure 404 {object} map[string]string
// @Router /extensions/{id} [get]
func (h *ExtensionHandler) GetRequest(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	requestID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid extension request ID format",
		})
		return
	}

	view, err := h.extensionQueries.GetByID(c.Request.Context(), requestID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Extension request not found",
		})
		return
	}

	// Members only see their own requests.
	if !actor.IsLibrarian() && view.UserID != actor.UserID {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Extension request not found",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromExtensionRequestView(view))
}

// @Summary Approve an extension request
// @Description Applies the extension to the rental and records the decision atomically
// @Tags extensions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Extension request ID"
// @Param request body reqdto.ApproveRequest false "Optional comment"
// @Success 200 {object} resdto.ExtensionRequestResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /extensions/{id}/approve [post]
func (h *ExtensionHandler) Approve(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	requestID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid extension request ID format",
		})
		return
	}

	var req reqdto.ApproveRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}
	}

	if err := h.extensionCommands.Approve(c.Request.Context(), actor, requestID, req.Comment); err != nil {
		h.renderDecisionError(c, err)
		return
	}

	h.renderRequest(c, requestID)
}

// @Summary Reject an extension request
// @Description Records the rejection; a comment explaining why is mandatory
// @Tags extensions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Extension request ID"
// @Param request body reqdto.RejectRequest true "Rejection comment"
// @Success 200 {object} resdto.ExtensionRequestResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /extensions/{id}/reject [post]
func (h *ExtensionHandler) Reject(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	requestID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid extension request ID format",
		})
		return
	}

	var req reqdto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Rejection comment is required",
		})
		return
	}

	if err := h.extensionCommands.Reject(c.Request.Context(), actor, requestID, req.Comment); err != nil {
		h.renderDecisionError(c, err)
		return
	}

	h.renderRequest(c, requestID)
}

func (h *ExtensionHandler) renderDecisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Extension request not found",
		})
	case errors.Is(err, commands.ErrRequestNotPending):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Extension request already decided",
		})
	case errors.Is(err, commands.ErrRentalNotActive):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Rental is not active",
		})
	case errors.Is(err, commands.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (h *ExtensionHandler) renderRequest(c *gin.Context, requestID int64) {
	view, err := h.extensionQueries.GetByID(c.Request.Context(), requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromExtensionRequestView(view))
}
