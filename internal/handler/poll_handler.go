package handler

import (
	"errors"
	"net/http"

	"livepoll/internal/services"
	"livepoll/internal/transport/httpdto"
	livepoll_errors "livepoll/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PollHandler struct {
	service *services.PollService
}

func NewPollHandler(service *services.PollService) *PollHandler {
	return &PollHandler{service: service}
}

func (h *PollHandler) Create(c *gin.Context) {
	var req httpdto.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.MessageResponse{Message: "Question and at least two options are required."})
		return
	}

	p, err := h.service.CreatePoll(c.Request.Context(), req.Question, req.Options)
	if err != nil {
		if errors.Is(err, livepoll_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.MessageResponse{Message: "Question and at least two options are required."})
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.MessageResponse{Message: "Failed to create poll."})
		return
	}

	c.JSON(http.StatusCreated, httpdto.CreatePollResponse{
		PollID:  p.ID.String(),
		Poll:    httpdto.NewPollView(p),
		Message: "Poll created successfully.",
	})
}

func (h *PollHandler) Get(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.MessageResponse{Message: "Poll not found."})
		return
	}

	p, err := h.service.GetPoll(c.Request.Context(), pollID)
	if err != nil {
		if errors.Is(err, livepoll_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.MessageResponse{Message: "Poll not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.MessageResponse{Message: "Failed to fetch poll."})
		return
	}

	c.JSON(http.StatusOK, httpdto.NewPollView(p))
}
