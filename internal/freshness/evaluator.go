package freshness

import (
	"context"
	"fmt"
	"time"

	"github.com/temirov/scaffoldsync/internal/commitgraph"
)

const (
	diffCheckFailureTemplateConstant      = "failed to compare template index with commit %s: %w"
	aheadCheckFailureTemplateConstant     = "failed to check whether %s is an ancestor of %s: %w"
	pendingCommitsFailureTemplateConstant = "failed to list template commits between %s and %s: %w"
	hoursPerDayConstant                   = 24
)

// Reason names the clause that settled a Decision.
type Reason string

// Decision reasons in evaluation order.
const (
	ReasonExactMatch         Reason = Reason("exact-match")
	ReasonNoChanges          Reason = Reason("no-changes")
	ReasonAheadOfLatest      Reason = Reason("ahead-of-latest")
	ReasonWithinAllowedDelay Reason = Reason("within-allowed-delay")
	ReasonOutdated           Reason = Reason("outdated")
)

// Decision describes the outcome of a freshness evaluation. OldestPendingCommit and DaysBehind
// are populated only when the grace period was measured against unapplied template commits.
type Decision struct {
	UpToDate            bool
	Reason              Reason
	OldestPendingCommit *commitgraph.Commit
	DaysBehind          int
}

// Evaluator decides whether a recorded template commit is current.
type Evaluator struct {
	clock Clock
}

// NewEvaluator constructs an Evaluator. A nil clock falls back to SystemClock.
func NewEvaluator(clock Clock) *Evaluator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Evaluator{clock: clock}
}

// IsUpToDate evaluates with the system clock.
func IsUpToDate(executionContext context.Context, graph commitgraph.Graph, currentCommit string, latestCommit string, policy Policy) (bool, error) {
	return NewEvaluator(SystemClock{}).IsUpToDate(executionContext, graph, currentCommit, latestCommit, policy)
}

// IsUpToDate reports whether currentCommit is considered current relative to latestCommit.
func (evaluator *Evaluator) IsUpToDate(executionContext context.Context, graph commitgraph.Graph, currentCommit string, latestCommit string, policy Policy) (bool, error) {
	decision, evaluationError := evaluator.Evaluate(executionContext, graph, currentCommit, latestCommit, policy)
	if evaluationError != nil {
		return false, evaluationError
	}
	return decision.UpToDate, nil
}

// Evaluate applies the tolerances in order and stops at the first that holds.
func (evaluator *Evaluator) Evaluate(executionContext context.Context, graph commitgraph.Graph, currentCommit string, latestCommit string, policy Policy) (Decision, error) {
	if validationError := policy.Validate(); validationError != nil {
		return Decision{}, validationError
	}

	if currentCommit == latestCommit {
		return Decision{UpToDate: true, Reason: ReasonExactMatch}, nil
	}

	diffEmpty, diffError := graph.DiffEmpty(executionContext, currentCommit)
	if diffError != nil {
		return Decision{}, fmt.Errorf(diffCheckFailureTemplateConstant, currentCommit, diffError)
	}
	if diffEmpty {
		return Decision{UpToDate: true, Reason: ReasonNoChanges}, nil
	}

	if !policy.Strict {
		latestIsAncestor, ancestryError := graph.IsAncestor(executionContext, latestCommit, currentCommit)
		if ancestryError != nil {
			return Decision{}, fmt.Errorf(aheadCheckFailureTemplateConstant, latestCommit, currentCommit, ancestryError)
		}
		if latestIsAncestor {
			return Decision{UpToDate: true, Reason: ReasonAheadOfLatest}, nil
		}
	}

	if policy.AllowedDelayDays != nil {
		return evaluator.evaluateAllowedDelay(executionContext, graph, currentCommit, latestCommit, *policy.AllowedDelayDays)
	}

	return Decision{Reason: ReasonOutdated}, nil
}

// evaluateAllowedDelay measures lag from the oldest template commit after currentCommit, never from latestCommit.
func (evaluator *Evaluator) evaluateAllowedDelay(executionContext context.Context, graph commitgraph.Graph, currentCommit string, latestCommit string, allowedDelayDays int) (Decision, error) {
	outdated := Decision{Reason: ReasonOutdated}

	currentIsAncestor, ancestryError := graph.IsAncestor(executionContext, currentCommit, latestCommit)
	if ancestryError != nil {
		return Decision{}, fmt.Errorf(aheadCheckFailureTemplateConstant, currentCommit, latestCommit, ancestryError)
	}
	if !currentIsAncestor {
		return outdated, nil
	}

	pendingCommits, listError := graph.CommitsBetween(executionContext, currentCommit, latestCommit)
	if listError != nil {
		return Decision{}, fmt.Errorf(pendingCommitsFailureTemplateConstant, currentCommit, latestCommit, listError)
	}
	if len(pendingCommits) == 0 {
		return outdated, nil
	}

	oldestPendingCommit := pendingCommits[0]
	now := evaluator.clock.Now()
	daysBehind := calendarDaysBetween(oldestPendingCommit.CommittedDate(now.Location()), now)

	outdated.OldestPendingCommit = &oldestPendingCommit
	outdated.DaysBehind = daysBehind
	if daysBehind > allowedDelayDays {
		return outdated, nil
	}

	outdated.UpToDate = true
	outdated.Reason = ReasonWithinAllowedDelay
	return outdated, nil
}

// calendarDaysBetween counts date boundaries crossed from earlier to later, ignoring the time of day.
func calendarDaysBetween(earlier time.Time, later time.Time) int {
	earlierDate := time.Date(earlier.Year(), earlier.Month(), earlier.Day(), 0, 0, 0, 0, time.UTC)
	laterInEarlierLocation := later.In(earlier.Location())
	laterDate := time.Date(laterInEarlierLocation.Year(), laterInEarlierLocation.Month(), laterInEarlierLocation.Day(), 0, 0, 0, 0, time.UTC)
	return int(laterDate.Sub(earlierDate).Hours() / hoursPerDayConstant)
}
