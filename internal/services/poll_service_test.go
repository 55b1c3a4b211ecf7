package services

import (
	"context"
	"errors"
	"testing"

	"livepoll/internal/repository"
	"livepoll/internal/testutil"
	livepoll_errors "livepoll/pkg/errors"
)

func newPollServiceForTest(t *testing.T) *PollService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewPollService(repository.NewPollRepository(db), nil, testutil.NewTestLogger())
}

func TestCreatePoll(t *testing.T) {
	svc := newPollServiceForTest(t)
	ctx := context.Background()

	p, err := svc.CreatePoll(ctx, "Tea or coffee?", []string{"Tea", "Coffee"})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	got, err := svc.GetPoll(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	if got.Question != "Tea or coffee?" {
		t.Errorf("Expected question round-tripped, got %q", got.Question)
	}
	if len(got.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(got.Options))
	}
}

func TestCreatePollTrimsInput(t *testing.T) {
	svc := newPollServiceForTest(t)

	p, err := svc.CreatePoll(context.Background(), "  Tea or coffee?  ", []string{" Tea ", "", "Coffee"})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	if p.Question != "Tea or coffee?" {
		t.Errorf("Question not trimmed: %q", p.Question)
	}
	if len(p.Options) != 2 {
		t.Fatalf("Blank options should be dropped, got %d options", len(p.Options))
	}
	if p.Options[0].Text != "Tea" {
		t.Errorf("Option text not trimmed: %q", p.Options[0].Text)
	}
}

func TestCreatePollRejectsInvalid(t *testing.T) {
	svc := newPollServiceForTest(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		question string
		options  []string
	}{
		{"empty question", "", []string{"Tea", "Coffee"}},
		{"one option", "Tea or coffee?", []string{"Tea"}},
		{"no options", "Tea or coffee?", nil},
		{"blank options", "Tea or coffee?", []string{"  ", ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreatePoll(ctx, tc.question, tc.options); !errors.Is(err, livepoll_errors.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
