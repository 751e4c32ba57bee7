package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/camellia/internal/model"
	"github.com/roach88/camellia/internal/store"
	"github.com/roach88/camellia/internal/testutil"
)

// errBadArgs marks malformed step arguments. They abort the run instead of
// being recorded as an outcome.
var errBadArgs = errors.New("bad step arguments")

// Harness is the scenario execution engine.
// It runs steps against a store with a deterministic clock and order ids.
type Harness struct {
	dir    string
	store  *store.Store
	clock  *testutil.FakeClock
	ids    *testutil.SequentialIDGenerator
	logger *slog.Logger
}

// Run executes a scenario against a fresh store in dir and returns the
// result. dir should be empty; it is seeded with the default data set.
//
// Execution flow:
// 1. Open (and seed) the store
// 2. Execute setup steps, which must succeed
// 3. Execute flow steps, checking expect clauses
// 4. Evaluate assertions against the trace and final state
func Run(scenario *Scenario, dir string) (*Result, error) {
	h := &Harness{
		dir:    dir,
		clock:  testutil.NewFakeClock(testutil.DefaultStart, time.Second),
		ids:    &testutil.SequentialIDGenerator{},
		logger: testutil.DiscardLogger(),
	}
	if err := h.open(); err != nil {
		return nil, err
	}
	defer func() {
		if err := h.store.Close(); err != nil {
			h.logger.Error("close store", "error", err)
		}
	}()

	for i, step := range scenario.Setup {
		if _, err := h.do(step); err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i, step.Do, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		res, err := h.do(step)
		if errors.Is(err, errBadArgs) {
			return nil, fmt.Errorf("flow step %d (%s): %w", i, step.Do, err)
		}
		outcome := outcomeOf(err)
		result.AddTrace(step.Do, step.Args, outcome, res)
		h.logger.Debug("flow step", "step", i, "action", step.Do, "outcome", outcome)

		checkExpect(result, i, step, outcome, res, err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.store) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) open() error {
	st, err := store.Open(h.dir,
		store.WithLogger(h.logger),
		store.WithClock(h.clock.Now),
		store.WithIDGenerator(h.ids),
	)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	h.store = st
	return nil
}

// reload closes the store and reopens it from disk.
func (h *Harness) reload() error {
	if err := h.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return h.open()
}

func (h *Harness) do(step Step) (map[string]any, error) {
	act, ok := actions[step.Do]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", errBadArgs, step.Do)
	}
	args := step.Args
	if args == nil {
		args = map[string]any{}
	}
	return act(h, args)
}

func checkExpect(result *Result, i int, step Step, outcome string, res map[string]any, err error) {
	want := OutcomeOK
	if step.Expect != nil {
		want = step.Expect.Outcome
	}
	if outcome != want {
		msg := fmt.Sprintf("flow[%d] %s: expected outcome %s, got %s", i, step.Do, want, outcome)
		if err != nil {
			msg += ": " + err.Error()
		}
		result.AddError(msg)
		return
	}
	if step.Expect == nil {
		return
	}
	for key, wantVal := range step.Expect.Result {
		got, ok := res[key]
		if !ok {
			result.AddError(fmt.Sprintf("flow[%d] %s: result has no field %q", i, step.Do, key))
			continue
		}
		if !valuesEqual(wantVal, got) {
			result.AddError(fmt.Sprintf("flow[%d] %s: result.%s = %v, want %v", i, step.Do, key, got, wantVal))
		}
	}
}

// outcomeOf maps a step error to its recorded outcome.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var se *store.Error
	if errors.As(err, &se) {
		return string(se.Code)
	}
	if model.IsTransitionError(err) {
		return OutcomeInvalidTransition
	}
	return OutcomeError
}
