package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/okulab/therapy-api/internal/handler"
	"github.com/okulab/therapy-api/internal/middleware"
	"github.com/okulab/therapy-api/internal/model"
	authService "github.com/okulab/therapy-api/internal/service/auth"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
)

type Handler struct {
	authSvc *authService.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(authSvc *authService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{authSvc: authSvc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/admin", h.auth.Authenticate(), h.auth.RequireRole(model.RoleAdmin))
	{
		group.POST("/approve-doctor", h.ApproveDoctor)
		group.GET("/users", h.ListUsers)
	}
}

func (h *Handler) ApproveDoctor(c *gin.Context) {
	var req model.ApproveDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		handler.RespondError(c, apperrors.ValidationField("user_id", "must be a valid UUID"))
		return
	}

	user, err := h.authSvc.ApproveDoctor(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.authSvc.ListUsers(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}
