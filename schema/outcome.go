package schema

import "fmt"

// OutcomeKind names the terminal state of a check-in attempt.
type OutcomeKind string

const (
	// OutcomeSuccess indicates the check-in action was dispatched.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeAlreadyDone indicates the portal reports today's check-in as done.
	OutcomeAlreadyDone OutcomeKind = "already_done"
	// OutcomeBlocked indicates an anti-bot interstitial replaced the page.
	OutcomeBlocked OutcomeKind = "blocked"
	// OutcomeNotFound indicates an expected UI element was missing.
	OutcomeNotFound OutcomeKind = "not_found"
	// OutcomeError is the catch-all for unexpected failures.
	OutcomeError OutcomeKind = "error"
)

// Outcome is the single result of one account's check-in.
type Outcome struct {
	Kind   OutcomeKind
	Detail string
	// Amount is the parsed reward, empty when none was found.
	Amount string
	// Confirmed is false for a success that no page text confirmed.
	Confirmed bool
}

// Succeeded reports whether the outcome counts towards the success ratio.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomeAlreadyDone
}

func (o Outcome) String() string {
	if o.Amount != "" {
		return fmt.Sprintf("%s(%s, %s)", o.Kind, o.Detail, o.Amount)
	}
	return fmt.Sprintf("%s(%s)", o.Kind, o.Detail)
}

// Success builds a confirmed success outcome with an optional amount.
func Success(detail, amount string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Detail: detail, Amount: amount, Confirmed: true}
}

// Unconfirmed builds a success outcome for a dispatched but unverified action.
func Unconfirmed(detail string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Detail: detail}
}

// AlreadyDone builds an already-done outcome.
func AlreadyDone(detail string) Outcome {
	return Outcome{Kind: OutcomeAlreadyDone, Detail: detail, Confirmed: true}
}

// Blocked builds a blocked outcome.
func Blocked(reason string) Outcome {
	return Outcome{Kind: OutcomeBlocked, Detail: reason}
}

// NotFound builds a not-found outcome.
func NotFound(reason string) Outcome {
	return Outcome{Kind: OutcomeNotFound, Detail: reason}
}

// Errored builds an error outcome; the diagnostic is truncated for display.
func Errored(prefix string, err error) Outcome {
	detail := prefix
	if err != nil {
		detail = prefix + Truncate(err.Error(), DiagnosticLimit)
	}
	return Outcome{Kind: OutcomeError, Detail: detail}
}
