package adaptive

import (
	"fmt"
	"strings"
)

// FallbackAnswer is returned when no strategy result clears the
// confidence floor.
const FallbackAnswer = "Unable to generate a conclusive answer."

// Metadata keys written by aggregation.
const (
	metaSelectedStrategy  = "selected_strategy"
	metaCombinationMethod = "combination_method"
	metaStrategiesUsed    = "strategies_used"
	metaTotalStrategies   = "total_strategies"
	metaError             = "error"
)

// Aggregate filters and merges the dispatcher's outcomes into a single
// result. Outcomes below the confidence floor are dropped. No survivors
// yields the fixed fallback at confidence 0.0; one survivor passes
// through unchanged with its tag recorded; several survivors concatenate
// tag-prefixed answers with the unweighted mean of their confidences.
// Steps concatenate in selection order, never arrival order.
func Aggregate(results []ReasoningResult) ReasoningResult {
	var survivors []ReasoningResult
	for _, r := range results {
		if r.Confidence >= ConfidenceFloor {
			survivors = append(survivors, r)
		}
	}

	switch len(survivors) {
	case 0:
		return ReasoningResult{
			Answer:     FallbackAnswer,
			Confidence: 0.0,
			Steps:      []ReasoningStep{},
			Metadata:   map[string]string{metaError: "no valid strategy result"},
		}

	case 1:
		result := survivors[0]
		metadata := make(map[string]string, len(result.Metadata)+1)
		for k, v := range result.Metadata {
			metadata[k] = v
		}
		metadata[metaSelectedStrategy] = string(result.Strategy)
		result.Metadata = metadata
		return result

	default:
		var answer strings.Builder
		answer.WriteString("Based on multiple reasoning approaches:\n")

		var steps []ReasoningStep
		var tags []string
		total := 0.0
		for _, r := range survivors {
			fmt.Fprintf(&answer, "- %s approach: %s\n", strings.ToUpper(string(r.Strategy)), r.Answer)
			total += r.Confidence
			steps = append(steps, r.Steps...)
			tags = append(tags, string(r.Strategy))
		}

		return ReasoningResult{
			Answer:     answer.String(),
			Confidence: total / float64(len(survivors)),
			Steps:      steps,
			Metadata: map[string]string{
				metaCombinationMethod: "mean",
				metaStrategiesUsed:    strings.Join(tags, ","),
				metaTotalStrategies:   fmt.Sprintf("%d", len(survivors)),
			},
		}
	}
}

// attemptStrategy attributes an aggregated result to one strategy tag for
// tracker updates: the surviving tag when one result passed through, the
// first contributing tag in selection order when several combined, else
// the first dispatched tag.
func attemptStrategy(aggregated ReasoningResult, dispatched []Strategy) Strategy {
	if tag, ok := aggregated.Metadata[metaSelectedStrategy]; ok {
		return Strategy(tag)
	}
	if used, ok := aggregated.Metadata[metaStrategiesUsed]; ok {
		if first, _, found := strings.Cut(used, ","); found {
			return Strategy(first)
		}
		return Strategy(used)
	}
	if len(dispatched) > 0 {
		return dispatched[0]
	}
	return StrategySequential
}
