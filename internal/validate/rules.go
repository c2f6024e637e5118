package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Compiled rules are shared by every validator in the process.
var rulePrograms sync.Map

func newRuleEnv() (*cel.Env, error) {
	return cel.NewEnv(cel.Variable("value", cel.DynType))
}

// compileRule returns the program for a rule predicate over "value".
func compileRule(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("rule expression required")
	}

	if cached, ok := rulePrograms.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	env, err := newRuleEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}

	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("rule must evaluate to bool, not %s", out)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	rulePrograms.Store(expr, program)

	return program, nil
}

func evalRule(program cel.Program, value any) (bool, error) {
	out, _, err := program.Eval(map[string]any{"value": value})
	if err != nil {
		return false, err
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("rule returned %v, not bool", out.Type())
	}

	return ok, nil
}
