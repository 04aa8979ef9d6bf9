package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/internal/application"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-certification/pkg/response"
)

// EmailHeader identifies the caller on the /users/me endpoints.
const EmailHeader = "EMAIL"

type UserHandler struct {
	Svc            *application.UserService
	Logger         *logrus.Logger
	VerifyRedirect string
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, verifyRedirect string) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, VerifyRedirect: verifyRedirect}
}

// Create registers a user. A failed certification mail does not fail the request.
func (h *UserHandler) Create(c *gin.Context) {
	var req entity.UserCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req)
	var de *domain.DeliveryError
	if err != nil && !(errors.As(err, &de) && u != nil) {
		writeError(c, h.Logger, err)
		return
	}
	meta := map[string]any{"certification_sent": err == nil}
	response.Success(c, http.StatusCreated, toUserResponse(u), "user created", meta)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "user", nil)
}

// Verify activates the user and redirects to the front end.
func (h *UserHandler) Verify(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	code := c.Query("certificationCode")
	if err := h.Svc.VerifyEmail(c.Request.Context(), id, code); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Redirect(http.StatusFound, h.VerifyRedirect)
}

func (h *UserHandler) GetMyInfo(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetMyInfo(c.Request.Context(), email)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toMyProfileResponse(u), "my info", nil)
}

func (h *UserHandler) UpdateMyInfo(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}
	var req entity.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.Svc.UpdateByEmail(c.Request.Context(), email, req)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toMyProfileResponse(u), "profile updated", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Login(c.Request.Context(), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	users, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponses(users), "users", map[string]any{"count": len(users)})
}

func callerEmail(c *gin.Context) (string, bool) {
	email := strings.TrimSpace(c.GetHeader(EmailHeader))
	if email == "" {
		response.Error[any](c, http.StatusBadRequest, "missing EMAIL header", map[string]string{"EMAIL": "is required"})
		return "", false
	}
	return email, true
}
