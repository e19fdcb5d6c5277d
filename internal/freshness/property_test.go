package freshness_test

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/temirov/scaffoldsync/internal/freshness"
)

const (
	linearHistoryLengthConstant = 6
	maximumDayGapConstant       = 4
	maximumAllowedDelayConstant = 30
)

// linearHistoryDaysAgo converts gaps between consecutive commits into ages, newest commit last.
func linearHistoryDaysAgo(dayGaps []int) []int {
	daysAgo := make([]int, len(dayGaps))
	age := 0
	for index := len(dayGaps) - 1; index >= 0; index-- {
		age += dayGaps[index]
		daysAgo[index] = age
	}
	return daysAgo
}

func TestEvaluatorProperties(testInstance *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	evaluator := freshness.NewEvaluator(fixedClock{now: testEvaluationTime})

	properties.Property("identical commits are current under every policy", prop.ForAll(
		func(dayGaps []int, commitIndex int, strict bool, allowedDelayDays int) bool {
			graph := buildLinearGraph(testInstance, linearHistoryDaysAgo(dayGaps)...)
			policy := freshness.Policy{Strict: strict, AllowedDelayDays: freshness.AllowedDelay(allowedDelayDays)}
			upToDate, evaluationError := evaluator.IsUpToDate(context.Background(), graph, commitName(commitIndex), commitName(commitIndex), policy)
			return evaluationError == nil && upToDate
		},
		gen.SliceOfN(linearHistoryLengthConstant, gen.IntRange(0, maximumDayGapConstant)),
		gen.IntRange(0, linearHistoryLengthConstant-1),
		gen.Bool(),
		gen.IntRange(0, maximumAllowedDelayConstant),
	))

	properties.Property("non-strict projects ahead of the template are current", prop.ForAll(
		func(dayGaps []int, latestIndex int, distance int) bool {
			currentIndex := latestIndex + distance
			if currentIndex >= linearHistoryLengthConstant {
				currentIndex = linearHistoryLengthConstant - 1
			}
			graph := buildLinearGraph(testInstance, linearHistoryDaysAgo(dayGaps)...)
			upToDate, evaluationError := evaluator.IsUpToDate(context.Background(), graph, commitName(currentIndex), commitName(latestIndex), freshness.Policy{})
			return evaluationError == nil && upToDate
		},
		gen.SliceOfN(linearHistoryLengthConstant, gen.IntRange(0, maximumDayGapConstant)),
		gen.IntRange(0, linearHistoryLengthConstant-1),
		gen.IntRange(0, linearHistoryLengthConstant-1),
	))

	properties.Property("grace period is measured from the oldest pending commit", prop.ForAll(
		func(dayGaps []int, currentIndex int, allowedDelayDays int) bool {
			daysAgo := linearHistoryDaysAgo(dayGaps)
			graph := buildLinearGraph(testInstance, daysAgo...)
			latestIndex := linearHistoryLengthConstant - 1
			policy := freshness.Policy{Strict: true, AllowedDelayDays: freshness.AllowedDelay(allowedDelayDays)}

			decision, evaluationError := evaluator.Evaluate(context.Background(), graph, commitName(currentIndex), commitName(latestIndex), policy)
			if evaluationError != nil {
				return false
			}
			expectedUpToDate := daysAgo[currentIndex+1] <= allowedDelayDays
			return decision.UpToDate == expectedUpToDate && decision.DaysBehind == daysAgo[currentIndex+1]
		},
		gen.SliceOfN(linearHistoryLengthConstant, gen.IntRange(0, maximumDayGapConstant)),
		gen.IntRange(0, linearHistoryLengthConstant-2),
		gen.IntRange(0, maximumAllowedDelayConstant),
	))

	properties.Property("evaluation is idempotent", prop.ForAll(
		func(dayGaps []int, currentIndex int, latestIndex int, strict bool, allowedDelayDays int) bool {
			graph := buildLinearGraph(testInstance, linearHistoryDaysAgo(dayGaps)...)
			policy := freshness.Policy{Strict: strict, AllowedDelayDays: freshness.AllowedDelay(allowedDelayDays)}
			firstDecision, firstError := evaluator.Evaluate(context.Background(), graph, commitName(currentIndex), commitName(latestIndex), policy)
			secondDecision, secondError := evaluator.Evaluate(context.Background(), graph, commitName(currentIndex), commitName(latestIndex), policy)
			if firstError != nil || secondError != nil {
				return false
			}
			return firstDecision.UpToDate == secondDecision.UpToDate &&
				firstDecision.Reason == secondDecision.Reason &&
				firstDecision.DaysBehind == secondDecision.DaysBehind
		},
		gen.SliceOfN(linearHistoryLengthConstant, gen.IntRange(0, maximumDayGapConstant)),
		gen.IntRange(0, linearHistoryLengthConstant-1),
		gen.IntRange(0, linearHistoryLengthConstant-1),
		gen.Bool(),
		gen.IntRange(0, maximumAllowedDelayConstant),
	))

	properties.TestingRun(testInstance)
}
