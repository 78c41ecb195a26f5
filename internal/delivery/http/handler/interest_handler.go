package handler

import (
	"net/http"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/usecase/profile"
	"github.com/gin-gonic/gin"
)

type InterestHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewInterestHandler(profileUseCase *profile.ProfileUseCase) *InterestHandler {
	return &InterestHandler{
		profileUseCase: profileUseCase,
	}
}

type styleQuery struct {
	Label    string `form:"label" binding:"required,max=50"`
	Selected bool   `form:"selected"`
}

// Catalog handles GET /interests
func (h *InterestHandler) Catalog(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	catalog, err := h.profileUseCase.InterestCatalog(c.Request.Context(), session)
	if err != nil {
		respondError(c, err, "failed to get interests")
		return
	}

	c.JSON(http.StatusOK, catalog)
}

// Update handles PUT /interests
func (h *InterestHandler) Update(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req profile.UpdateInterestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
		return
	}

	catalog, err := h.profileUseCase.UpdateInterests(c.Request.Context(), session, &req)
	if err != nil {
		respondError(c, err, "failed to update interests")
		return
	}

	c.JSON(http.StatusOK, catalog)
}

// Style handles GET /interests/style
func (h *InterestHandler) Style(c *gin.Context) {
	var q styleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid query: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, domain.NewStyledInterest(q.Label, q.Selected))
}
