package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestOutcomeSucceeded(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    bool
	}{
		{outcome: Success("ok", "1.00"), want: true},
		{outcome: Unconfirmed("dispatched"), want: true},
		{outcome: AlreadyDone("done"), want: true},
		{outcome: Blocked("interstitial"), want: false},
		{outcome: NotFound("missing"), want: false},
		{outcome: Errored("boom: ", errors.New("x")), want: false},
	}
	for _, tc := range tests {
		if got := tc.outcome.Succeeded(); got != tc.want {
			t.Fatalf("%s: Succeeded() = %v, want %v", tc.outcome, got, tc.want)
		}
	}
}

func TestErroredTruncatesDiagnostic(t *testing.T) {
	long := strings.Repeat("x", DiagnosticLimit*2)
	out := Errored("流程异常: ", errors.New(long))
	if out.Kind != OutcomeError {
		t.Fatalf("expected error kind, got %s", out.Kind)
	}
	if !strings.HasPrefix(out.Detail, "流程异常: ") {
		t.Fatalf("expected prefix, got %q", out.Detail)
	}
	if !strings.HasSuffix(out.Detail, "...") {
		t.Fatalf("expected ellipsis, got %q", out.Detail)
	}
	if n := len([]rune(out.Detail)); n > DiagnosticLimit+len([]rune("流程异常: "))+3 {
		t.Fatalf("diagnostic not bounded: %d runes", n)
	}
}

func TestRunSummaryAdd(t *testing.T) {
	var summary RunSummary
	summary.Add(AccountResult{Account: "a***", Outcome: Success("ok", "")})
	summary.Add(AccountResult{Account: "b***", Outcome: Blocked("x")})
	summary.Add(AccountResult{Account: "c***", Outcome: AlreadyDone("done")})
	if summary.Total != 3 {
		t.Fatalf("expected total 3, got %d", summary.Total)
	}
	if summary.Succeeded != 2 {
		t.Fatalf("expected 2 successes, got %d", summary.Succeeded)
	}
	if summary.Results[1].Account != "b***" {
		t.Fatalf("expected order preserved, got %+v", summary.Results)
	}
}
