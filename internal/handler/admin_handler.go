package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/service"
	"github.com/prperemyshlev/identity-sync-service/internal/utils"
	"go.uber.org/zap"
)

// AdminHandler handles administrative user data requests. Request bodies are strict.
type AdminHandler struct {
	adminService service.AdminService
	validator    *utils.Validator
	logger       *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService service.AdminService, validator *utils.Validator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validator:    validator,
		logger:       logger,
	}
}

// CreateUserData handles user data creation for a user id
// @Summary Create user data
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateUserDataRequest true "User data"
// @Success 201 {object} domain.UserData
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/user-data [post]
func (h *AdminHandler) CreateUserData(c *gin.Context) {
	var req dto.CreateUserDataRequest
	if !bindBody(c, h.validator, &req, true) {
		return
	}

	data, err := h.adminService.CreateUserData(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, data)
}

// CreateUserDataByEmail handles user data creation for a user email
// @Summary Create user data by user email
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateUserDataByEmailRequest true "User data"
// @Success 201 {object} domain.UserData
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/user-data/by-email [post]
func (h *AdminHandler) CreateUserDataByEmail(c *gin.Context) {
	var req dto.CreateUserDataByEmailRequest
	if !bindBody(c, h.validator, &req, true) {
		return
	}

	data, err := h.adminService.CreateUserDataByEmail(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, data)
}

// ListUserData handles the filtered, sorted and paginated listing
// @Summary List user data
// @Tags admin
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param sortBy query string false "createdAt, updatedAt, outboundId or campaignName"
// @Param sortOrder query string false "asc or desc"
// @Param userId query string false "User ID"
// @Param campaignName query string false "Campaign name contains"
// @Success 200 {object} dto.UserDataPage
// @Router /admin/user-data [get]
func (h *AdminHandler) ListUserData(c *gin.Context) {
	query := dto.DefaultUserDataQuery()
	if err := c.ShouldBindQuery(&query); err != nil {
		respondValidation(c, &utils.ValidationError{Errors: []utils.FieldError{
			{Field: "query", Message: "query parameters are malformed"},
		}})
		return
	}

	if err := h.validator.Struct(&query); err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, err := h.adminService.ListUserData(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CountUsers handles the user count
// @Summary Count users
// @Tags admin
// @Produce json
// @Success 200 {object} dto.CountResponse
// @Router /admin/users/count [get]
func (h *AdminHandler) CountUsers(c *gin.Context) {
	count, err := h.adminService.CountUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

// GetUserData handles fetching user data by id
// @Summary Get user data
// @Tags admin
// @Produce json
// @Param id path string true "User data ID"
// @Success 200 {object} domain.UserData
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/user-data/{id} [get]
func (h *AdminHandler) GetUserData(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	data, err := h.adminService.GetUserData(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// UpdateUserData handles partial user data updates
// @Summary Update user data
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User data ID"
// @Param request body dto.UpdateUserDataRequest true "Fields to change"
// @Success 200 {object} domain.UserData
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/user-data/{id} [patch]
func (h *AdminHandler) UpdateUserData(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserDataRequest
	if !bindBody(c, h.validator, &req, true) {
		return
	}

	data, err := h.adminService.UpdateUserData(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// DeleteUserData handles user data deletion
// @Summary Delete user data
// @Tags admin
// @Param id path string true "User data ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/user-data/{id} [delete]
func (h *AdminHandler) DeleteUserData(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.adminService.DeleteUserData(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
