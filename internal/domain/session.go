package domain

// Step is the conversation's current position in the question sequence.
type Step string

const (
	StepIdle        Step = "IDLE"
	StepWaitingPai  Step = "WAITING_PAI"
	StepWaitingCard Step = "WAITING_CC"
	StepWaitingDesc Step = "WAITING_DESC"
	StepWaitingCat  Step = "WAITING_CAT"
	StepWaitingBank Step = "WAITING_BANK"
)

// Fields holds the answers collected so far. Nil pointers are unanswered.
type Fields struct {
	Name         string
	Amount       string
	Category     string
	PayerIsPai   *bool
	IsCreditCard *bool
	Bank         string
}

// Session is the single in-memory entry being collected.
type Session struct {
	Step   Step
	Fields Fields
}

// NewSession returns an empty session at IDLE.
func NewSession() *Session {
	return &Session{Step: StepIdle}
}

// Reset clears every field and returns the session to IDLE.
func (s *Session) Reset() {
	s.Step = StepIdle
	s.Fields = Fields{}
}

// IsEmpty reports whether the session holds no pending entry.
func (s *Session) IsEmpty() bool {
	return s.Step == StepIdle && s.Fields == Fields{}
}
