package httpdto

import (
	"time"

	"livepoll/internal/domain/poll"
)

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type VoteRequest struct {
	OptionID    string `json:"optionId"`
	DeviceToken string `json:"deviceToken"`
}

type OptionView struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
}

type PollView struct {
	ID        string       `json:"id"`
	Question  string       `json:"question"`
	Options   []OptionView `json:"options"`
	CreatedAt time.Time    `json:"createdAt"`
}

type CreatePollResponse struct {
	PollID  string   `json:"pollId"`
	Poll    PollView `json:"poll"`
	Message string   `json:"message"`
}

type VoteResponse struct {
	UpdatedPoll PollView `json:"updatedPoll"`
	Message     string   `json:"message"`
}

type VoteStatusResponse struct {
	HasVoted bool    `json:"hasVoted"`
	OptionID *string `json:"optionId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewPollView(p poll.Poll) PollView {
	view := PollView{
		ID:        p.ID.String(),
		Question:  p.Question,
		Options:   make([]OptionView, 0, len(p.Options)),
		CreatedAt: p.CreatedAt,
	}
	for _, o := range p.Options {
		view.Options = append(view.Options, OptionView{
			ID:    o.ID.String(),
			Text:  o.Text,
			Votes: o.Votes,
		})
	}
	return view
}
