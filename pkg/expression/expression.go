package expression

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the data a filter expression is evaluated against, one candidate
// file at a time.
type Env struct {
	Path         string
	Name         string
	Dir          string
	Ext          string
	Size         int64
	ModifiedTime time.Time
}

// NewEnv builds the evaluation environment for a file.
func NewEnv(path string, size int64, modified time.Time) Env {
	return Env{
		Path:         path,
		Name:         filepath.Base(path),
		Dir:          filepath.Dir(path),
		Ext:          filepath.Ext(path),
		Size:         size,
		ModifiedTime: modified,
	}
}

type CompiledExpression struct {
	Text    string
	Program *vm.Program
}

// Compile parses filter expressions. Each must evaluate to a boolean.
func Compile(filters []string) ([]CompiledExpression, error) {
	compiled := make([]CompiledExpression, 0, len(filters))

	for _, text := range filters {
		program, err := expr.Compile(text, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile expression %q: %w", text, err)
		}

		compiled = append(compiled, CompiledExpression{Text: text, Program: program})
	}

	return compiled, nil
}

// CheckAllMatch evaluates every expression against env and reports whether
// all of them matched.
func CheckAllMatch(env Env, expressions []CompiledExpression) (bool, error) {
	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, env)
		if err != nil {
			return false, fmt.Errorf("check expression %q: %w", expression.Text, err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, fmt.Errorf("expression %q did not evaluate to a boolean", expression.Text)
		}

		if !expResult {
			return false, nil
		}
	}

	return true, nil
}
