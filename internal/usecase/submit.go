package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"finance-bot/internal/domain"
)

const (
	dateLayout      = "02/01/2006"
	defaultTimezone = "America/Sao_Paulo"
	journalTTL      = 90 * 24 * time.Hour
)

// MessageChannel delivers prompts to the owner chat and dismisses button taps.
type MessageChannel interface {
	Send(ctx context.Context, text string, kb *domain.Keyboard) error
	AcknowledgeChoice(ctx context.Context, interactionID string) error
}

// LedgerStore is the spreadsheet-backed record store.
type LedgerStore interface {
	CategoryLister
	Append(ctx context.Context, record domain.LedgerRecord) (domain.AppendResult, error)
	Check(ctx context.Context, query domain.CheckQuery) (domain.CheckResult, error)
}

// Journal keeps an audit trail of finalize outcomes.
type Journal interface {
	RecordSubmission(ctx context.Context, entry domain.SubmissionEntry) error
}

// Submitter writes a completed session to the ledger and confirms that the
// row became readable.
type Submitter struct {
	channel  MessageChannel
	ledger   LedgerStore
	journal  Journal
	location *time.Location
	now      func() time.Time
	schedule []time.Duration
	sleep    Sleeper
}

type SubmitterOption func(*Submitter)

func WithJournal(j Journal) SubmitterOption {
	return func(s *Submitter) {
		s.journal = j
	}
}

func WithLocation(loc *time.Location) SubmitterOption {
	return func(s *Submitter) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) {
		if now != nil {
			s.now = now
		}
	}
}

func WithSchedule(schedule []time.Duration, sleep Sleeper) SubmitterOption {
	return func(s *Submitter) {
		s.schedule = slices.Clone(schedule)
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// NewSubmitter defaults to the America/Sao_Paulo calendar and
// DefaultConfirmSchedule.
func NewSubmitter(ch MessageChannel, ledger LedgerStore, opts ...SubmitterOption) (*Submitter, error) {
	if ch == nil {
		return nil, errors.New("usecase: message channel must not be nil")
	}
	if ledger == nil {
		return nil, errors.New("usecase: ledger store must not be nil")
	}
	s := &Submitter{
		channel:  ch,
		ledger:   ledger,
		now:      time.Now,
		schedule: slices.Clone(DefaultConfirmSchedule),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.location == nil {
		loc, err := time.LoadLocation(defaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("usecase: load default timezone: %w", err)
		}
		s.location = loc
	}
	return s, nil
}

// Finalize submits the session and always leaves it reset.
func (s *Submitter) Finalize(ctx context.Context, session *domain.Session) domain.Outcome {
	defer session.Reset()

	if err := checkComplete(session.Fields); err != nil {
		logger(ctx).Warn("finalize rejected", "code", err.Code, "reason", err.Reason, "step", session.Step)
		s.notify(ctx, msgSessionExpired, nil)
		return domain.OutcomeAborted
	}

	s.notify(ctx, msgSending, nil)

	today := s.today()
	record := buildRecord(session.Fields, today)

	res, err := s.ledger.Append(ctx, record)
	if err != nil || res.Failed() {
		// Transport detail goes to the log and journal only; the chat gets
		// the store's own message or a fixed text.
		shown, detail := res.Message, res.Message
		if err != nil {
			shown, detail = msgLedgerUnreachable, err.Error()
		}
		if shown == "" {
			shown, detail = unknownError, unknownError
		}
		werr := newError(ErrorLedgerWrite, "append_failed", err)
		logger(ctx).Error("ledger append failed", "code", werr.Code, "err", werr, "message", detail)
		s.notify(ctx, msgWriteFailed+shown, nil)
		s.record(ctx, record, domain.OutcomeFailed, detail)
		return domain.OutcomeFailed
	}

	query := buildCheckQuery(session.Fields, today)
	var storeErr, transportErr string
	confirmed := Retry(ctx, s.schedule, true, s.sleep, func(ctx context.Context) bool {
		out, err := s.ledger.Check(ctx, query)
		if err != nil {
			logger(ctx).Warn("ledger check failed", "code", ErrorTransport, "err", err)
			transportErr = err.Error()
			return false
		}
		storeErr = out.Error
		return out.Found
	})

	if confirmed {
		s.notify(ctx, msgConfirmed, nil)
		s.record(ctx, record, domain.OutcomeConfirmed, "")
		return domain.OutcomeConfirmed
	}

	uerr := newError(ErrorLedgerUnconfirmed, "not_visible", nil)
	logger(ctx).Warn("ledger write not confirmed", "code", uerr.Code, "store_error", storeErr, "transport_error", transportErr)
	msg := msgUnconfirmed
	if storeErr != "" {
		msg += " Erro: " + storeErr
	}
	s.notify(ctx, msg, nil)
	detail := storeErr
	if detail == "" {
		detail = transportErr
	}
	s.record(ctx, record, domain.OutcomeUnconfirmed, detail)
	return domain.OutcomeUnconfirmed
}

func (s *Submitter) today() string {
	return s.now().In(s.location).Format(dateLayout)
}

// notify is non-critical I/O: failures are logged and dropped.
func (s *Submitter) notify(ctx context.Context, text string, kb *domain.Keyboard) {
	if err := s.channel.Send(ctx, text, kb); err != nil {
		logger(ctx).Warn("send failed", "code", ErrorTransport, "err", err)
	}
}

// record is non-critical I/O: the ledger is the source of truth.
func (s *Submitter) record(ctx context.Context, record domain.LedgerRecord, outcome domain.Outcome, message string) {
	if s.journal == nil {
		return
	}
	now := s.now().UTC()
	entry := domain.SubmissionEntry{
		ID:         newUUID(),
		Record:     record,
		Outcome:    outcome,
		Message:    message,
		RecordedAt: now,
		TTL:        now.Add(journalTTL).Unix(),
	}
	if err := s.journal.RecordSubmission(ctx, entry); err != nil {
		logger(ctx).Warn("journal write failed", "err", err, "outcome", outcome)
	}
}

func checkComplete(f domain.Fields) *Error {
	switch {
	case f.Name == "":
		return newError(ErrorIncompleteSession, "missing_name", nil)
	case f.Amount == "":
		return newError(ErrorIncompleteSession, "missing_amount", nil)
	case f.Category == "":
		return newError(ErrorIncompleteSession, "missing_category", nil)
	case f.PayerIsPai == nil:
		return newError(ErrorIncompleteSession, "missing_payer", nil)
	case f.IsCreditCard == nil:
		return newError(ErrorIncompleteSession, "missing_card_flag", nil)
	case !*f.IsCreditCard && f.Bank == "":
		return newError(ErrorIncompleteSession, "missing_bank", nil)
	}
	return nil
}

func buildRecord(f domain.Fields, date string) domain.LedgerRecord {
	card := *f.IsCreditCard
	account := domain.CardAccount
	if !card {
		account = f.Bank
	}
	return domain.LedgerRecord{
		Name:         f.Name,
		Amount:       f.Amount,
		Date:         date,
		Category:     f.Category,
		Account:      account,
		PayerIsPai:   *f.PayerIsPai,
		IsCreditCard: card,
	}
}

func buildCheckQuery(f domain.Fields, date string) domain.CheckQuery {
	return domain.CheckQuery{
		Name:         f.Name,
		Amount:       f.Amount,
		Date:         date,
		IsCreditCard: *f.IsCreditCard,
	}
}

var newUUID = func() string {
	return uuid.NewString()
}
