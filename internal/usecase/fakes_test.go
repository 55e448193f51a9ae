package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finance-bot/internal/domain"
)

type sentMessage struct {
	text string
	kb   *domain.Keyboard
}

type fakeChannel struct {
	sent    []sentMessage
	acked   []string
	sendErr error
	ackErr  error
}

func (f *fakeChannel) Send(_ context.Context, text string, kb *domain.Keyboard) error {
	f.sent = append(f.sent, sentMessage{text: text, kb: kb})
	return f.sendErr
}

func (f *fakeChannel) AcknowledgeChoice(_ context.Context, interactionID string) error {
	f.acked = append(f.acked, interactionID)
	return f.ackErr
}

func (f *fakeChannel) last() sentMessage {
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeChannel) texts() []string {
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.text)
	}
	return out
}

type fakeLedger struct {
	appendRes   domain.AppendResult
	appendErr   error
	appended    []domain.LedgerRecord
	checks      []domain.CheckResult // returned in order; last one repeats
	checkErr    error
	queries     []domain.CheckQuery
	categories  []string
	categoryErr error
	listCalls   int
}

func (f *fakeLedger) Append(_ context.Context, record domain.LedgerRecord) (domain.AppendResult, error) {
	f.appended = append(f.appended, record)
	return f.appendRes, f.appendErr
}

func (f *fakeLedger) Check(_ context.Context, query domain.CheckQuery) (domain.CheckResult, error) {
	f.queries = append(f.queries, query)
	if f.checkErr != nil {
		return domain.CheckResult{}, f.checkErr
	}
	if len(f.checks) == 0 {
		return domain.CheckResult{}, nil
	}
	idx := min(len(f.queries)-1, len(f.checks)-1)
	return f.checks[idx], nil
}

func (f *fakeLedger) ListCategories(_ context.Context) ([]string, error) {
	f.listCalls++
	return f.categories, f.categoryErr
}

// foundOn returns check results that miss until the nth call.
func foundOn(n int) []domain.CheckResult {
	out := make([]domain.CheckResult, n)
	out[n-1] = domain.CheckResult{Found: true}
	return out
}

type fakeJournal struct {
	entries []domain.SubmissionEntry
	err     error
}

func (f *fakeJournal) RecordSubmission(_ context.Context, entry domain.SubmissionEntry) error {
	f.entries = append(f.entries, entry)
	return f.err
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

var (
	testZone  = time.FixedZone("BRT", -3*60*60)
	testClock = func() time.Time {
		// 01:30 UTC is still the previous day in São Paulo.
		return time.Date(2024, time.March, 5, 1, 30, 0, 0, time.UTC)
	}
	errBoom = errors.New("boom")
)

type harness struct {
	channel *fakeChannel
	ledger  *fakeLedger
	journal *fakeJournal
	sleeper *recordingSleeper
	engine  *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		channel: &fakeChannel{},
		ledger:  &fakeLedger{checks: foundOn(1)},
		journal: &fakeJournal{},
		sleeper: &recordingSleeper{},
	}
	sub, err := NewSubmitter(h.channel, h.ledger,
		WithJournal(h.journal),
		WithLocation(testZone),
		WithClock(testClock),
		WithSchedule(DefaultConfirmSchedule, h.sleeper.Sleep),
	)
	require.NoError(t, err)
	eng, err := NewEngine(h.channel, NewCategoryCache(h.ledger, time.Hour), sub)
	require.NoError(t, err)
	h.engine = eng
	return h
}

func (h *harness) text(t *testing.T, raw string) Result {
	t.Helper()
	return h.engine.HandleText(context.Background(), raw)
}

func (h *harness) choose(t *testing.T, choiceID string) Result {
	t.Helper()
	return h.engine.HandleChoice(context.Background(), choiceID, "cb-"+choiceID)
}

// walkTo drives the conversation to the given step with a non-card entry.
func (h *harness) walkTo(t *testing.T, step domain.Step, card bool) {
	t.Helper()
	cc := "cc_nao"
	if card {
		cc = "cc_sim"
	}
	seq := []func(){
		func() { h.text(t, "/novo") },
		func() { h.choose(t, "pai_sim") },
		func() { h.choose(t, cc) },
		func() { h.text(t, "mercado,-150,00") },
		func() { h.text(t, "Comida") },
	}
	order := []domain.Step{
		domain.StepIdle,
		domain.StepWaitingPai,
		domain.StepWaitingCard,
		domain.StepWaitingDesc,
		domain.StepWaitingCat,
		domain.StepWaitingBank,
	}
	for i, s := range order {
		if s == step {
			return
		}
		if i < len(seq) {
			seq[i]()
		}
	}
	t.Fatalf("unreachable step %s", step)
}

func requireIdle(t *testing.T, e *Engine) {
	t.Helper()
	s := e.Session()
	require.Equal(t, domain.StepIdle, s.Step)
	require.True(t, s.IsEmpty(), "fields must be empty: %+v", s.Fields)
}
