package improvement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/internal/engine"
	"github.com/GoSim-25-26J-441/brownout-core/internal/policy"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// PolicyResult is the outcome of one policy run within a comparison
type PolicyResult struct {
	Policy string         `json:"policy"`
	RunID  string         `json:"run_id"`
	Score  float64        `json:"score"`
	Rank   int            `json:"rank"`
	Report *models.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// PolicyComparison ranks the policies of one scenario by an objective.
// Results are ordered best first; failed runs come last without a rank.
type PolicyComparison struct {
	Objective          string          `json:"objective"`
	Minimize           bool            `json:"minimize"`
	BestPolicy         string          `json:"best_policy"`
	WorstPolicy        string          `json:"worst_policy"`
	ImprovementPercent float64         `json:"improvement_percent"`
	Spread             ScoreSpread     `json:"spread"`
	Results            []*PolicyResult `json:"results"`
}

type compareOptions struct {
	policies    []policy.Kind
	maxParallel int
	logger      *slog.Logger
	runPrefix   string
}

// CompareOption configures ComparePolicies
type CompareOption func(*compareOptions)

// WithPolicies restricts the comparison to the given policies
func WithPolicies(kinds ...policy.Kind) CompareOption {
	return func(o *compareOptions) {
		o.policies = kinds
	}
}

// WithMaxParallel bounds the number of concurrent runs
func WithMaxParallel(n int) CompareOption {
	return func(o *compareOptions) {
		if n > 0 {
			o.maxParallel = n
		}
	}
}

// WithLogger sets the logger of the comparison and of every run
func WithLogger(l *slog.Logger) CompareOption {
	return func(o *compareOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRunPrefix sets the prefix of the per-policy run ids
func WithRunPrefix(prefix string) CompareOption {
	return func(o *compareOptions) {
		o.runPrefix = prefix
	}
}

// ComparePolicies runs the scenario once per policy, each with its own
// controller, and ranks the reports by objective. Runs execute
// concurrently. If any run fails the partial comparison is returned
// together with the first error.
func ComparePolicies(ctx context.Context, scenario *config.Scenario, objective ObjectiveFunction, opts ...CompareOption) (*PolicyComparison, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}
	if objective == nil {
		return nil, fmt.Errorf("objective function is nil")
	}
	o := &compareOptions{
		policies:    policy.Kinds(),
		maxParallel: 4,
		logger:      logger.NewDiscard(),
		runPrefix:   "compare",
	}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.policies) == 0 {
		return nil, fmt.Errorf("no policies to compare")
	}

	// Limit parallelism
	semaphore := make(chan struct{}, o.maxParallel)
	var wg sync.WaitGroup
	results := make([]*PolicyResult, len(o.policies))
	errs := make([]error, len(o.policies))

	for i, kind := range o.policies {
		wg.Add(1)
		go func(idx int, kind policy.Kind) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			result, err := runPolicy(ctx, scenario, objective, kind, o)
			if err != nil {
				errs[idx] = fmt.Errorf("policy %s: %w", kind, err)
				result.Error = err.Error()
			}
			results[idx] = result
		}(i, kind)
	}
	wg.Wait()

	comparison := rank(objective, results)
	o.logger.Info("policy comparison finished",
		"objective", comparison.Objective,
		"best_policy", comparison.BestPolicy,
		"policies", len(results))

	if err := errors.Join(errs...); err != nil {
		return comparison, fmt.Errorf("some policies failed to run: %w", err)
	}
	return comparison, nil
}

func runPolicy(ctx context.Context, scenario *config.Scenario, objective ObjectiveFunction, kind policy.Kind, o *compareOptions) (*PolicyResult, error) {
	result := &PolicyResult{
		Policy: kind.String(),
		RunID:  fmt.Sprintf("%s-%s", o.runPrefix, kind),
	}
	sim, err := engine.NewSimulation(result.RunID, scenario,
		engine.WithPolicy(kind),
		engine.WithLogger(o.logger))
	if err != nil {
		return result, err
	}
	report, err := sim.Run(ctx)
	if err != nil {
		return result, err
	}
	score, err := objective.Evaluate(report)
	if err != nil {
		return result, err
	}
	result.Report = report
	result.Score = score
	return result, nil
}

// rank orders successful results by ascending score, keeping the policy
// order for ties, and assigns 1-based ranks
func rank(objective ObjectiveFunction, results []*PolicyResult) *PolicyComparison {
	comparison := &PolicyComparison{
		Objective: objective.Name(),
		Minimize:  objective.Direction(),
		Results:   make([]*PolicyResult, 0, len(results)),
	}

	var ok, failed []*PolicyResult
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, r)
			continue
		}
		ok = append(ok, r)
	}
	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].Score < ok[j].Score
	})

	scores := make([]float64, len(ok))
	for i, r := range ok {
		r.Rank = i + 1
		scores[i] = r.Score
	}
	comparison.Results = append(comparison.Results, ok...)
	comparison.Results = append(comparison.Results, failed...)

	if len(ok) > 0 {
		best, worst := ok[0], ok[len(ok)-1]
		comparison.BestPolicy = best.Policy
		comparison.WorstPolicy = worst.Policy
		// scores are normalized so lower is always better
		comparison.ImprovementPercent = GetImprovementPercentage(worst.Score, best.Score, true)
	}
	comparison.Spread = spread(scores)
	return comparison
}
