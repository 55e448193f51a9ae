package usecase

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finance-bot/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func completeSession(card bool) *domain.Session {
	s := &domain.Session{
		Step: domain.StepWaitingCat,
		Fields: domain.Fields{
			Name:         "mercado",
			Amount:       "-150,00",
			Category:     "Comida",
			PayerIsPai:   boolPtr(false),
			IsCreditCard: boolPtr(card),
		},
	}
	if !card {
		s.Step = domain.StepWaitingBank
		s.Fields.Bank = "XP"
	}
	return s
}

type submitFixture struct {
	channel *fakeChannel
	ledger  *fakeLedger
	journal *fakeJournal
	sleeper *recordingSleeper
	sub     *Submitter
}

func newSubmitFixture(t *testing.T, ledger *fakeLedger) *submitFixture {
	t.Helper()
	f := &submitFixture{
		channel: &fakeChannel{},
		ledger:  ledger,
		journal: &fakeJournal{},
		sleeper: &recordingSleeper{},
	}
	sub, err := NewSubmitter(f.channel, ledger,
		WithJournal(f.journal),
		WithLocation(testZone),
		WithClock(testClock),
		WithSchedule(DefaultConfirmSchedule, f.sleeper.Sleep),
	)
	require.NoError(t, err)
	f.sub = sub
	return f
}

func TestNewSubmitter_ValidatesDependencies(t *testing.T) {
	_, err := NewSubmitter(nil, &fakeLedger{})
	require.Error(t, err)

	_, err = NewSubmitter(&fakeChannel{}, nil)
	require.Error(t, err)
}

func TestFinalize_ConfirmedOnFourthCheck(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{checks: foundOn(4)})
	session := completeSession(true)

	out := f.sub.Finalize(context.Background(), session)
	require.Equal(t, domain.OutcomeConfirmed, out)
	require.Len(t, f.ledger.queries, 4)
	require.Equal(t, []time.Duration{
		200 * time.Millisecond, 600 * time.Millisecond, 1200 * time.Millisecond,
	}, f.sleeper.delays)
	require.Equal(t, []string{msgSending, msgConfirmed}, f.channel.texts())
	require.True(t, session.IsEmpty())
}

func TestFinalize_ConfirmedImmediately(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{checks: foundOn(1)})

	out := f.sub.Finalize(context.Background(), completeSession(false))
	require.Equal(t, domain.OutcomeConfirmed, out)
	require.Len(t, f.ledger.queries, 1)
	require.Empty(t, f.sleeper.delays)
}

func TestFinalize_UnconfirmedAfterFinalCheck(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{checks: []domain.CheckResult{{Found: false, Error: "sheet busy"}}})
	session := completeSession(true)

	out := f.sub.Finalize(context.Background(), session)
	require.Equal(t, domain.OutcomeUnconfirmed, out)
	require.Len(t, f.ledger.queries, 5)
	require.Equal(t, DefaultConfirmSchedule, f.sleeper.delays)
	require.Equal(t, msgUnconfirmed+" Erro: sheet busy", f.channel.last().text)
	require.True(t, session.IsEmpty())

	require.Len(t, f.journal.entries, 1)
	require.Equal(t, domain.OutcomeUnconfirmed, f.journal.entries[0].Outcome)
	require.Equal(t, "sheet busy", f.journal.entries[0].Message)
}

func TestFinalize_UnconfirmedWithoutStoreError(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{})

	out := f.sub.Finalize(context.Background(), completeSession(false))
	require.Equal(t, domain.OutcomeUnconfirmed, out)
	require.Equal(t, msgUnconfirmed, f.channel.last().text)
}

func TestFinalize_CheckTransportErrorsCountAsMisses(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{checkErr: errBoom})

	out := f.sub.Finalize(context.Background(), completeSession(true))
	require.Equal(t, domain.OutcomeUnconfirmed, out)
	require.Len(t, f.ledger.queries, 5)
	require.Equal(t, msgUnconfirmed, f.channel.last().text)
	require.Equal(t, "boom", f.journal.entries[0].Message)
}

func TestFinalize_CheckQueryUsesNaturalKey(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{checks: foundOn(1)})

	f.sub.Finalize(context.Background(), completeSession(false))
	require.Equal(t, []domain.CheckQuery{{
		Name:         "mercado",
		Amount:       "-150,00",
		Date:         "04/03/2024",
		IsCreditCard: false,
	}}, f.ledger.queries)
	require.Equal(t, "XP", f.ledger.appended[0].Account)
}

func TestFinalize_WriteErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		res  domain.AppendResult
		want string
	}{
		{name: "with message", res: domain.AppendResult{Status: "erro", Message: "planilha cheia"}, want: msgWriteFailed + "planilha cheia"},
		{name: "without message", res: domain.AppendResult{Status: "erro"}, want: msgWriteFailed + unknownError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSubmitFixture(t, &fakeLedger{appendRes: tc.res})
			session := completeSession(true)

			out := f.sub.Finalize(context.Background(), session)
			require.Equal(t, domain.OutcomeFailed, out)
			require.Empty(t, f.ledger.queries)
			require.Equal(t, tc.want, f.channel.last().text)
			require.True(t, session.IsEmpty())
		})
	}
}

func TestFinalize_AppendTransportError(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{appendErr: errBoom})

	out := f.sub.Finalize(context.Background(), completeSession(true))
	require.Equal(t, domain.OutcomeFailed, out)
	require.Empty(t, f.ledger.queries)
	require.Equal(t, msgWriteFailed+msgLedgerUnreachable, f.channel.last().text)
	require.Equal(t, domain.OutcomeFailed, f.journal.entries[0].Outcome)
	require.Equal(t, "boom", f.journal.entries[0].Message)
}

func TestFinalize_TransportDetailStaysOutOfChat(t *testing.T) {
	leak := &url.Error{Op: "Post", URL: "https://script.google.com/macros/s/secret-deployment/exec", Err: errBoom}
	cases := []struct {
		name   string
		ledger *fakeLedger
		want   string
	}{
		{name: "append", ledger: &fakeLedger{appendErr: leak}, want: msgWriteFailed + msgLedgerUnreachable},
		{name: "check", ledger: &fakeLedger{checkErr: leak}, want: msgUnconfirmed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSubmitFixture(t, tc.ledger)

			f.sub.Finalize(context.Background(), completeSession(true))
			for _, text := range f.channel.texts() {
				require.NotContains(t, text, "secret-deployment")
			}
			require.Equal(t, tc.want, f.channel.last().text)
		})
	}
}

func TestFinalize_IncompleteSessionAborts(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Session)
	}{
		{name: "missing name", mutate: func(s *domain.Session) { s.Fields.Name = "" }},
		{name: "missing amount", mutate: func(s *domain.Session) { s.Fields.Amount = "" }},
		{name: "missing category", mutate: func(s *domain.Session) { s.Fields.Category = "" }},
		{name: "missing payer", mutate: func(s *domain.Session) { s.Fields.PayerIsPai = nil }},
		{name: "missing card flag", mutate: func(s *domain.Session) { s.Fields.IsCreditCard = nil }},
		{name: "missing bank", mutate: func(s *domain.Session) {
			s.Fields.IsCreditCard = boolPtr(false)
			s.Fields.Bank = ""
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSubmitFixture(t, &fakeLedger{checks: foundOn(1)})
			session := completeSession(true)
			tc.mutate(session)

			out := f.sub.Finalize(context.Background(), session)
			require.Equal(t, domain.OutcomeAborted, out)
			require.Empty(t, f.ledger.appended)
			require.Empty(t, f.journal.entries)
			require.Equal(t, []string{msgSessionExpired}, f.channel.texts())
			require.True(t, session.IsEmpty())
		})
	}
}

func TestFinalize_CardEntryIgnoresBank(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{checks: foundOn(1)})
	session := completeSession(true)
	session.Fields.Bank = "BB"

	out := f.sub.Finalize(context.Background(), session)
	require.Equal(t, domain.OutcomeConfirmed, out)
	require.Equal(t, domain.CardAccount, f.ledger.appended[0].Account)
}

func TestFinalize_JournalFailureIsIgnored(t *testing.T) {
	f := newSubmitFixture(t, &fakeLedger{checks: foundOn(2)})
	f.journal.err = errBoom
	restore := newUUID
	newUUID = func() string { return "entry-1" }
	t.Cleanup(func() { newUUID = restore })

	out := f.sub.Finalize(context.Background(), completeSession(true))
	require.Equal(t, domain.OutcomeConfirmed, out)
	require.Len(t, f.journal.entries, 1)
	entry := f.journal.entries[0]
	require.Equal(t, "entry-1", entry.ID)
	require.Equal(t, domain.OutcomeConfirmed, entry.Outcome)
	require.Equal(t, testClock().Add(journalTTL).Unix(), entry.TTL)
}

func TestFinalize_CancelledContextStopsPolling(t *testing.T) {
	ledger := &fakeLedger{}
	ch := &fakeChannel{}
	sub, err := NewSubmitter(ch, ledger, WithLocation(testZone), WithClock(testClock))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := sub.Finalize(ctx, completeSession(true))
	require.Equal(t, domain.OutcomeUnconfirmed, out)
	require.Len(t, ledger.queries, 1)
}
