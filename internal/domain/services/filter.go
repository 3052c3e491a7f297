package services

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/reglet-dev/verity/internal/domain/execution"
)

// maxFilterLength bounds filter expressions; MaxNodes bounds their complexity.
const (
	maxFilterLength = 1000
	maxFilterNodes  = 100
)

// ResultEnv defines the variables available to a result filter expression.
type ResultEnv struct {
	Severity  string `expr:"severity"`
	Level     string `expr:"level"`
	Code      string `expr:"code"`
	Owner     string `expr:"owner"`
	OwnerKind string `expr:"owner_kind"`
	OwnerID   string `expr:"owner_id"`
	Message   string `expr:"message"`
	Property  string `expr:"property"`
}

// NewResultEnv exposes r to filter expressions.
func NewResultEnv(r execution.VerificationResult) ResultEnv {
	return ResultEnv{
		Severity:  r.Severity.String(),
		Level:     r.Severity.Short(),
		Code:      r.Code,
		Owner:     r.Owner,
		OwnerKind: r.OwnerKind,
		OwnerID:   r.OwnerID,
		Message:   r.Message,
		Property:  r.Property,
	}
}

// ResultFilter selects verification results with expr-lang boolean
// expressions such as `level == "error" && owner_kind == "requirement"`.
// Compiled programs are cached per expression and safe for concurrent use.
type ResultFilter struct {
	programCache map[string]*vm.Program
	cacheMu      sync.RWMutex
}

// NewResultFilter creates a filter with an empty program cache.
func NewResultFilter() *ResultFilter {
	return &ResultFilter{programCache: make(map[string]*vm.Program)}
}

// Compile checks an expression and caches its program.
func (f *ResultFilter) Compile(expression string) (*vm.Program, error) {
	if len(expression) > maxFilterLength {
		return nil, fmt.Errorf("filter expression too long (max %d chars): %d chars", maxFilterLength, len(expression))
	}

	f.cacheMu.RLock()
	program, found := f.programCache[expression]
	f.cacheMu.RUnlock()
	if found {
		return program, nil
	}

	f.cacheMu.Lock()
	defer f.cacheMu.Unlock()

	if program, found := f.programCache[expression]; found {
		return program, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(ResultEnv{}),
		expr.AsBool(),
		expr.MaxNodes(maxFilterNodes))
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	f.programCache[expression] = program
	return program, nil
}

// Matches reports whether r satisfies expression. An empty expression
// matches everything.
func (f *ResultFilter) Matches(expression string, r execution.VerificationResult) (bool, error) {
	if expression == "" {
		return true, nil
	}
	program, err := f.Compile(expression)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, NewResultEnv(r))
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter did not return a boolean: %v", out)
	}
	return matched, nil
}

// Apply returns the results that satisfy expression, in order.
func (f *ResultFilter) Apply(expression string, results []execution.VerificationResult) ([]execution.VerificationResult, error) {
	if expression == "" {
		return results, nil
	}
	out := make([]execution.VerificationResult, 0, len(results))
	for _, r := range results {
		ok, err := f.Matches(expression, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Report returns a copy of report holding only the matching results.
func (f *ResultFilter) Report(expression string, report *execution.Report) (*execution.Report, error) {
	if expression == "" {
		return report, nil
	}
	if _, err := f.Compile(expression); err != nil {
		return nil, err
	}
	var evalErr error
	filtered := report.Filter(func(r execution.VerificationResult) bool {
		if evalErr != nil {
			return false
		}
		ok, err := f.Matches(expression, r)
		if err != nil {
			evalErr = err
		}
		return ok
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return filtered, nil
}
