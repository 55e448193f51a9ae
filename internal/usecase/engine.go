package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"finance-bot/internal/domain"
)

// Action describes what the engine did with an inbound event.
type Action string

const (
	ActionIgnored   Action = "ignored"
	ActionPrompted  Action = "prompted"
	ActionReprompt  Action = "reprompted"
	ActionCancelled Action = "cancelled"
	ActionRejected  Action = "rejected"
	ActionFinalized Action = "finalized"
)

// Result is returned for every handled event.
type Result struct {
	Action  Action
	Step    domain.Step
	Outcome domain.Outcome
}

// CategorySource supplies the options for the category keyboard.
type CategorySource interface {
	Categories(ctx context.Context) []string
}

// Finalizer submits a completed session and reports the outcome.
type Finalizer interface {
	Finalize(ctx context.Context, session *domain.Session) domain.Outcome
}

// Engine drives the single conversation. Events are processed one at a time,
// finalize included.
type Engine struct {
	channel    MessageChannel
	categories CategorySource
	finalizer  Finalizer

	mu      sync.Mutex
	session *domain.Session
}

// NewEngine returns an engine with an empty session.
func NewEngine(ch MessageChannel, categories CategorySource, finalizer Finalizer) (*Engine, error) {
	if ch == nil {
		return nil, errors.New("usecase: message channel must not be nil")
	}
	if categories == nil {
		return nil, errors.New("usecase: category source must not be nil")
	}
	if finalizer == nil {
		return nil, errors.New("usecase: finalizer must not be nil")
	}
	return &Engine{
		channel:    ch,
		categories: categories,
		finalizer:  finalizer,
		session:    domain.NewSession(),
	}, nil
}

// Session returns a copy of the current session.
func (e *Engine) Session() domain.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.session
}

// HandleText applies a plain chat message: a command, description or category.
func (e *Engine) HandleText(ctx context.Context, raw string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	switch {
	case raw == cmdCancel:
		s.Reset()
		e.notify(ctx, msgCancelled, nil)
		return e.result(ActionCancelled)

	case raw == cmdNew:
		if s.Step != domain.StepIdle {
			return e.result(ActionIgnored)
		}
		s.Step = domain.StepWaitingPai
		e.notify(ctx, msgAskPai, paiKeyboard())
		return e.result(ActionPrompted)

	case s.Step == domain.StepWaitingDesc:
		name, amount, ok := ParseDescription(raw)
		if !ok {
			err := newError(ErrorUserInput, "bad_description_format", nil)
			logger(ctx).Info("description rejected", "code", err.Code, "reason", err.Reason)
			e.notify(ctx, msgInvalidDesc, nil)
			return e.result(ActionReprompt)
		}
		s.Fields.Name = name
		s.Fields.Amount = amount
		s.Step = domain.StepWaitingCat
		e.notify(ctx, msgAskCategory, categoryKeyboard(e.categories.Categories(ctx)))
		return e.result(ActionPrompted)

	case s.Step == domain.StepWaitingCat:
		s.Fields.Category = strings.TrimSpace(raw)
		if s.Fields.IsCreditCard != nil && *s.Fields.IsCreditCard {
			return e.finalize(ctx)
		}
		s.Step = domain.StepWaitingBank
		e.notify(ctx, msgAskBank, bankKeyboard())
		return e.result(ActionPrompted)
	}
	return e.result(ActionIgnored)
}

// HandleChoice applies an inline button tap. The interaction is acknowledged
// whatever the outcome.
func (e *Engine) HandleChoice(ctx context.Context, choiceID, interactionID string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.channel.AcknowledgeChoice(ctx, interactionID); err != nil {
		logger(ctx).Warn("acknowledge failed", "code", ErrorTransport, "err", err)
	}

	choice, err := ParseChoice(choiceID)
	if err != nil {
		logger(ctx).Warn("unknown choice ignored", "err", err)
		return e.result(ActionIgnored)
	}

	s := e.session
	if !acceptsChoice(s.Step, choice.Kind) {
		oerr := newError(ErrorOutOfOrder, "choice_"+choice.Kind.String()+"_in_"+string(s.Step), nil)
		logger(ctx).Warn("out of order choice", "code", oerr.Code, "reason", oerr.Reason, "choice", choice.tag())
		s.Reset()
		e.notify(ctx, msgOutOfOrder, nil)
		return e.result(ActionRejected)
	}

	switch choice.Kind {
	case ChoicePai:
		payer := choice.Yes()
		s.Fields.PayerIsPai = &payer
		s.Step = domain.StepWaitingCard
		e.notify(ctx, msgAskCard, cardKeyboard())
	case ChoiceCard:
		card := choice.Yes()
		s.Fields.IsCreditCard = &card
		s.Step = domain.StepWaitingDesc
		e.notify(ctx, msgAskDesc, nil)
	case ChoiceBank:
		s.Fields.Bank = NormalizeBank(choice.Value)
		return e.finalize(ctx)
	}
	return e.result(ActionPrompted)
}

// A pai tap is tolerated before an explicit /novo.
func acceptsChoice(step domain.Step, kind ChoiceKind) bool {
	switch kind {
	case ChoicePai:
		return step == domain.StepIdle || step == domain.StepWaitingPai
	case ChoiceCard:
		return step == domain.StepWaitingCard
	case ChoiceBank:
		return step == domain.StepWaitingBank
	}
	return false
}

func (e *Engine) finalize(ctx context.Context) Result {
	defer e.session.Reset()
	outcome := e.finalizer.Finalize(ctx, e.session)
	logger(ctx).Info("entry finalized", "outcome", outcome)
	return Result{Action: ActionFinalized, Step: domain.StepIdle, Outcome: outcome}
}

func (e *Engine) result(a Action) Result {
	return Result{Action: a, Step: e.session.Step}
}

// notify is non-critical I/O: failures are logged and dropped.
func (e *Engine) notify(ctx context.Context, text string, kb *domain.Keyboard) {
	if err := e.channel.Send(ctx, text, kb); err != nil {
		logger(ctx).Warn("send failed", "code", ErrorTransport, "err", err)
	}
}
