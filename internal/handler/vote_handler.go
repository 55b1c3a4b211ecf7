package handler

import (
	"context"
	"errors"
	"net/http"

	"livepoll/internal/services"
	"livepoll/internal/transport/httpdto"
	livepoll_errors "livepoll/pkg/errors"
	"livepoll/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VoteHandler struct {
	service *services.VoteService
}

func NewVoteHandler(service *services.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) Vote(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.MessageResponse{Message: "Poll not found."})
		return
	}

	var req httpdto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.MessageResponse{Message: "Invalid vote request."})
		return
	}

	if req.DeviceToken == "" {
		c.JSON(http.StatusBadRequest, httpdto.MessageResponse{Message: "Device token is required!"})
		return
	}

	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.MessageResponse{Message: "Option not found."})
		return
	}

	ctx := context.WithValue(c.Request.Context(), logger.PollIdKey, pollID.String())
	updated, err := h.service.AdmitVote(ctx, pollID, optionID, c.ClientIP(), req.DeviceToken)
	if err != nil {
		switch {
		case errors.Is(err, livepoll_errors.ErrAlreadyVoted):
			c.JSON(http.StatusBadRequest, httpdto.MessageResponse{Message: "You have already voted on this poll."})
		case errors.Is(err, livepoll_errors.ErrNotFound):
			c.JSON(http.StatusNotFound, httpdto.MessageResponse{Message: "Poll or option not found."})
		case errors.Is(err, livepoll_errors.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, httpdto.MessageResponse{Message: "Device token is required!"})
		default:
			c.JSON(http.StatusInternalServerError, httpdto.MessageResponse{Message: "Failed to vote on poll."})
		}
		return
	}

	c.JSON(http.StatusOK, httpdto.VoteResponse{
		UpdatedPoll: httpdto.NewPollView(updated),
		Message:     "Vote recorded successfully.",
	})
}

func (h *VoteHandler) Status(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.MessageResponse{Message: "Poll not found."})
		return
	}

	deviceToken := c.Query("deviceToken")

	ctx := context.WithValue(c.Request.Context(), logger.PollIdKey, pollID.String())
	status, err := h.service.CheckVoteStatus(ctx, pollID, c.ClientIP(), deviceToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.MessageResponse{Message: "Failed to check vote status."})
		return
	}

	resp := httpdto.VoteStatusResponse{HasVoted: status.HasVoted}
	if status.OptionID != nil {
		id := status.OptionID.String()
		resp.OptionID = &id
	}
	c.JSON(http.StatusOK, resp)
}
