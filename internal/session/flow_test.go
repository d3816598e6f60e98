package session

import (
	"testing"

	"github.com/giftelf/escrow-bot/internal/model"
)

func TestNewCreateDeal(t *testing.T) {
	s := NewCreateDeal()

	if s.Flow != model.FlowCreateDeal {
		t.Errorf("flow = %s, want %s", s.Flow, model.FlowCreateDeal)
	}
	if s.Step != model.StepAwaitingAmount {
		t.Errorf("step = %s, want %s", s.Step, model.StepAwaitingAmount)
	}
	if s.Amount != "" {
		t.Errorf("amount = %q, want empty", s.Amount)
	}
}

func TestAdvanceCreateDealHappyPath(t *testing.T) {
	s := *NewCreateDeal()

	s, outcome := AdvanceCreateDeal(s, "10,5")
	if outcome != OutcomeAmountAccepted {
		t.Fatalf("outcome = %d, want OutcomeAmountAccepted", outcome)
	}
	if s.Amount != "10.5" {
		t.Fatalf("amount = %q, want %q", s.Amount, "10.5")
	}
	if s.Step != model.StepAwaitingDescription {
		t.Fatalf("step = %s, want %s", s.Step, model.StepAwaitingDescription)
	}

	s, outcome = AdvanceCreateDeal(s, "Gift Card")
	if outcome != OutcomeCompleted {
		t.Fatalf("outcome = %d, want OutcomeCompleted", outcome)
	}
	if s.Amount != "10.5" {
		t.Fatalf("amount lost on completion, got %q", s.Amount)
	}
}

func TestAdvanceCreateDealRepromptKeepsStep(t *testing.T) {
	s := *NewCreateDeal()

	for _, text := range []string{"-5", "abc", "0", ""} {
		next, outcome := AdvanceCreateDeal(s, text)
		if outcome != OutcomeReprompt {
			t.Fatalf("AdvanceCreateDeal(%q) outcome = %d, want OutcomeReprompt", text, outcome)
		}
		if next.Step != model.StepAwaitingAmount {
			t.Fatalf("AdvanceCreateDeal(%q) step = %s, want %s", text, next.Step, model.StepAwaitingAmount)
		}
		s = next
	}

	// После отклонённых вводов корректная сумма по-прежнему принимается.
	next, outcome := AdvanceCreateDeal(s, "7")
	if outcome != OutcomeAmountAccepted {
		t.Fatalf("outcome = %d, want OutcomeAmountAccepted", outcome)
	}
	if next.Amount != "7" {
		t.Fatalf("amount = %q, want %q", next.Amount, "7")
	}
}

func TestAdvanceCreateDealUnknownStep(t *testing.T) {
	s := model.Session{Flow: model.FlowCreateDeal, Step: "no-such-step"}

	next, outcome := AdvanceCreateDeal(s, "10.5")
	if outcome != OutcomeReprompt {
		t.Fatalf("outcome = %d, want OutcomeReprompt", outcome)
	}
	if next != s {
		t.Fatalf("session changed: %+v", next)
	}
}
