package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	reqdto "library-lending/internal/handler/dto/request"
	resdto "library-lending/internal/handler/dto/response"
	"library-lending/internal/handler/middleware"
	"library-lending/internal/usecase/commands"
	"library-lending/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type RentalHandler struct {
	rentalCommands commands.RentalCommands
	rentalQueries  queries.RentalQueries
}

func NewRentalHandler(rentalCommands commands.RentalCommands, rentalQueries queries.RentalQueries) *RentalHandler {
	return &RentalHandler{
		rentalCommands: rentalCommands,
		rentalQueries:  rentalQueries,
	}
}

// @Summary Check out a book copy
// @Description Opens a rental and marks the copy unavailable
// @Tags rentals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CheckoutRequest true "Checkout request"
// @Success 201 {object} resdto.RentalResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /rentals [post]
func (h *RentalHandler) Checkout(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	userID := actor.UserID
	if req.UserID != nil {
		userID = *req.UserID
	}

	view, err := h.rentalCommands.Checkout(c.Request.Context(), actor, userID, req.BookCopyID, req.PeriodDays)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrCopyNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Book copy not found",
			})
		case errors.Is(err, commands.ErrCopyUnavailable), errors.Is(err, commands.ErrCopyConflict):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Book copy is not available",
			})
		case errors.Is(err, commands.ErrNotRentalOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Cannot check out for another user",
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
		return
	}

	c.JSON(http.StatusCreated, resdto.FromRentalView(view))
}

// @Summary Return a rented book
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rental ID"
// @Success 200 {object} resdto.RentalResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /rentals/{id}/return [post]
func (h *RentalHandler) Return(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	rentalID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid rental ID format",
		})
		return
	}

	view, err := h.rentalCommands.Return(c.Request.Context(), actor, rentalID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRentalNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Rental not found",
			})
		case errors.Is(err, commands.ErrRentalAlreadyReturned):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Rental already returned",
			})
		case errors.Is(err, commands.ErrNotRentalOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Rental belongs to another user",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromRentalView(view))
}

// @Summary Extend a rental
// @Description Extends directly while the self-service cap allows; afterwards
// @Description files an approval request instead.
// @Tags rentals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rental ID"
// @Param request body reqdto.ExtendRequest true "Extension request"
// @Success 200 {object} resdto.ExtendResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /rentals/{id}/extend [post]
func (h *RentalHandler) Extend(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	rentalID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid rental ID format",
		})
		return
	}

	var req reqdto.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.rentalCommands.Extend(c.Request.Context(), actor, rentalID, req.RequestedDays)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRentalNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Rental not found",
			})
		case errors.Is(err, commands.ErrRentalNotActive):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Rental is not active",
			})
		case errors.Is(err, commands.ErrNotRentalOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Rental belongs to another user",
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
		return
	}

	c.JSON(http.StatusOK, resdto.FromExtensionResult(result))
}

// @Summary Get rental
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rental ID"
// @Success 200 {object} resdto.RentalResponse
// @Failure 404 {object} map[string]string
// @Router /rentals/{id} [get]
func (h *RentalHandler) GetRental(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	rentalID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid rental ID format",
		})
		return
	}

	view, err := h.rentalQueries.GetByID(c.Request.Context(), rentalID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Rental not found",
		})
		return
	}

	// Members only see their own rentals; reported as not found to avoid
	// leaking rental ids.
	if !actor.IsLibrarian() && view.UserID != actor.UserID {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Rental not found",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromRentalView(view))
}

// @Summary List own active rentals
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.RentalResponse
// @Router /rentals [get]
func (h *RentalHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	views, err := h.rentalQueries.ListActiveByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromRentalViews(views))
}

// @Summary List all active rentals
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.RentalResponse
// @Router /rentals/active [get]
func (h *RentalHandler) ListAllActive(c *gin.Context) {
	views, err := h.rentalQueries.ListAllActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromRentalViews(views))
}

// @Summary List overdue rentals
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param as_of query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} resdto.RentalResponse
// @Router /rentals/overdue [get]
func (h *RentalHandler) ListOverdue(c *gin.Context) {
	var asOf time.Time
	if s := c.Query("as_of"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid as_of date format",
			})
			return
		}
		asOf = parsed
	}

	views, err := h.rentalQueries.ListOverdue(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromRentalViews(views))
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
