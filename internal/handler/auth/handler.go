package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/okulab/therapy-api/internal/handler"
	"github.com/okulab/therapy-api/internal/middleware"
	"github.com/okulab/therapy-api/internal/model"
	authService "github.com/okulab/therapy-api/internal/service/auth"
	intakeService "github.com/okulab/therapy-api/internal/service/intake"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
)

type Handler struct {
	authSvc   *authService.Service
	intakeSvc *intakeService.Service
	auth      *middleware.AuthMiddleware
}

func NewHandler(authSvc *authService.Service, intakeSvc *intakeService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		authSvc:   authSvc,
		intakeSvc: intakeSvc,
		auth:      auth,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/auth")
	{
		group.POST("/register", h.Register)
		group.POST("/login", h.Login)

		authed := group.Group("", h.auth.Authenticate())
		{
			authed.GET("/me", h.Me)
			authed.PUT("/triage", h.auth.RequireRole(model.RolePatient), h.UpdateTriage)
			authed.POST("/apply-doctor", h.auth.RequireRole(model.RolePatient), h.ApplyDoctor)

			doctor := authed.Group("", h.auth.RequireRole(model.RoleDoctor))
			{
				doctor.GET("/intake-queue", h.IntakeQueue)
				doctor.POST("/claim-patient", h.ClaimPatient)
				doctor.GET("/my-patients", h.MyPatients)
			}
		}
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}

	token, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(token))
}

func (h *Handler) Me(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	user, err := h.authSvc.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) UpdateTriage(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req model.TriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}

	user, err := h.authSvc.UpdateTriage(c.Request.Context(), actor, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) ApplyDoctor(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req model.ApplyDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}

	user, err := h.authSvc.ApplyForDoctor(c.Request.Context(), actor, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) IntakeQueue(c *gin.Context) {
	patients, err := h.intakeSvc.ListQueue(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) ClaimPatient(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req model.ClaimPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		handler.RespondError(c, apperrors.ValidationField("patient_id", "must be a valid UUID"))
		return
	}

	patient, err := h.intakeSvc.Claim(c.Request.Context(), actor, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) MyPatients(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	patients, err := h.intakeSvc.MyPatients(c.Request.Context(), actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}
