package handler

import (
	"net/http"

	"github.com/gdugdh24/profile-service/internal/usecase/profile"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

// GetMyProfile handles GET /profile/me
// @Summary Get my profile
// @Description Get current user's profile with horoscope, zodiac and styled interests
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.ProfileView
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	view, err := h.profileUseCase.GetMyProfile(c.Request.Context(), session)
	if err != nil {
		respondError(c, err, "failed to get profile")
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateMyProfile handles PUT /profile/me
// @Summary Update my profile
// @Description Update current user's profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpdateProfileRequest true "Profile update data"
// @Success 200 {object} domain.ProfileView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req profile.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
		return
	}

	view, err := h.profileUseCase.UpdateProfile(c.Request.Context(), session, &req)
	if err != nil {
		respondError(c, err, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, view)
}

// CreateProfile handles POST /profile
// @Summary Create profile
// @Description Complete onboarding
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.CreateProfileRequest true "Profile data"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /profile [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req profile.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
		return
	}

	msg, err := h.profileUseCase.CreateProfile(c.Request.Context(), session, &req)
	if err != nil {
		respondError(c, err, "failed to create profile")
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: msg})
}

// SuggestAbout handles POST /profile/suggest-about
// @Summary Suggest "about me" texts
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string][]string
// @Failure 401 {object} ErrorResponse
// @Router /profile/suggest-about [post]
func (h *ProfileHandler) SuggestAbout(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	suggestions, err := h.profileUseCase.SuggestAbout(c.Request.Context(), session)
	if err != nil {
		respondError(c, err, "failed to suggest about")
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
