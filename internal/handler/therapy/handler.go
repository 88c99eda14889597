package therapy

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/okulab/therapy-api/internal/handler"
	"github.com/okulab/therapy-api/internal/middleware"
	"github.com/okulab/therapy-api/internal/model"
	sessionService "github.com/okulab/therapy-api/internal/service/session"
	therapyService "github.com/okulab/therapy-api/internal/service/therapy"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
)

const catalogCacheKey = "protocol_catalog"

type Handler struct {
	therapySvc *therapyService.Service
	sessionSvc *sessionService.Service
	auth       *middleware.AuthMiddleware
	cache      *gocache.Cache
}

func NewHandler(therapySvc *therapyService.Service, sessionSvc *sessionService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		therapySvc: therapySvc,
		sessionSvc: sessionSvc,
		auth:       auth,
		// The registry never changes at runtime; the cache only saves
		// re-serializing the catalog on every request.
		cache: gocache.New(time.Hour, 2*time.Hour),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/therapy", h.auth.Authenticate())
	{
		doctor := group.Group("", h.auth.RequireRole(model.RoleDoctor))
		{
			doctor.GET("/protocols", h.Protocols)
			doctor.POST("/assign", h.Prescribe)
			doctor.GET("/patients/:id/history", h.PatientHistory)
			doctor.GET("/patients/:id/stats", h.PatientStats)
		}

		patient := group.Group("", h.auth.RequireRole(model.RolePatient))
		{
			patient.GET("/my-plan", h.MyPlan)
			patient.POST("/log", h.LogSession)
			patient.GET("/history", h.History)
			patient.GET("/stats", h.Stats)
		}
	}
}

func (h *Handler) Protocols(c *gin.Context) {
	if cached, ok := h.cache.Get(catalogCacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	response := handler.NewSuccessResponse(h.therapySvc.Catalog())
	h.cache.Set(catalogCacheKey, response, gocache.DefaultExpiration)
	c.JSON(http.StatusOK, response)
}

func (h *Handler) Prescribe(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req model.PrescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}

	prescription, err := h.therapySvc.Prescribe(c.Request.Context(), actor, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(prescription))
}

func (h *Handler) MyPlan(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	prescriptions, err := h.therapySvc.ListActive(c.Request.Context(), actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescriptions))
}

func (h *Handler) LogSession(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req model.LogSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}

	session, err := h.sessionSvc.Record(c.Request.Context(), actor.UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(session))
}

func (h *Handler) History(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	sessions, err := h.sessionSvc.History(c.Request.Context(), actor.UserID, historyLimit(c), ascending(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sessions))
}

func (h *Handler) Stats(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	stats, err := h.sessionSvc.Stats(c.Request.Context(), actor.UserID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) PatientHistory(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.ValidationField("id", "must be a valid UUID"))
		return
	}

	sessions, err := h.sessionSvc.HistoryFor(c.Request.Context(), actor, patientID, historyLimit(c), ascending(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sessions))
}

func (h *Handler) PatientStats(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.ValidationField("id", "must be a valid UUID"))
		return
	}

	stats, err := h.sessionSvc.StatsFor(c.Request.Context(), actor, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func historyLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		return 0
	}
	return limit
}

func ascending(c *gin.Context) bool {
	return c.Query("order") == "asc"
}
