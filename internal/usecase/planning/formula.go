package planning

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
)

// formulaEnv exposes the month being computed to planning formulas
func formulaEnv(year, month int) map[string]any {
	return map[string]any{
		"year":  year,
		"month": month,
	}
}

// EvaluateFormula computes a planning value formula such as "-50 * 12 / 4".
// The result is rounded to whole minor units.
func EvaluateFormula(formula string, year, month int) (int64, error) {
	formula = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(formula), "="))
	if formula == "" {
		return 0, fmt.Errorf("invalid formula: empty")
	}

	program, err := expr.Compile(formula, expr.Env(formulaEnv(0, 0)))
	if err != nil {
		return 0, fmt.Errorf("invalid formula %q: %w", formula, err)
	}
	out, err := expr.Run(program, formulaEnv(year, month))
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate formula %q: %w", formula, err)
	}

	var v float64
	switch n := out.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		v = n
	default:
		return 0, fmt.Errorf("invalid formula %q: result %v is not a number", formula, out)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid formula %q: result is not finite", formula)
	}
	return int64(math.Round(v)), nil
}
