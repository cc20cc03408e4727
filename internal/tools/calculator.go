package tools

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
)

const calculatorDescription = `Evaluate mathematical expressions, including advanced functions.

Examples:
- Compound interest: 10000 * (1.07^15)
- Square roots: sqrt(386154294354481)
- Percentages: 48329 * 0.237
- Trigonometry: sin(pi/2)
- Powers: 2^10`

const expressionDescription = "Mathematical expression using numbers, operators (+, -, *, /, ^, %), " +
	"parentheses, and functions (sqrt, sin, cos, tan, log, log10, log2, exp, pow, abs, floor, ceil, round)"

var errInvalidResult = errors.New("Invalid calculation result")

// EvaluationResult is the outcome of the calculator tool.
type EvaluationResult struct {
	Expression string   `json:"expression"`
	Result     *float64 `json:"result,omitempty"`
	Error      string   `json:"error,omitempty"`
}

var calcEnv = map[string]any{
	"pi": math.Pi,
	"e":  math.E,
}

var errModuloByZero = errors.New("modulo by zero")

// floatLiterals turns every integer literal into a float64 so that no
// operation runs in wrapping int arithmetic.
type floatLiterals struct{}

func (floatLiterals) Visit(node *ast.Node) {
	if n, ok := (*node).(*ast.IntegerNode); ok {
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	}
}

// expr defines % for integers only; with float literals it is routed
// through mod.
var calcOptions = []expr.Option{
	expr.Env(calcEnv),
	expr.Patch(floatLiterals{}),
	unaryFunc("sqrt", math.Sqrt),
	unaryFunc("sin", math.Sin),
	unaryFunc("cos", math.Cos),
	unaryFunc("tan", math.Tan),
	unaryFunc("asin", math.Asin),
	unaryFunc("acos", math.Acos),
	unaryFunc("atan", math.Atan),
	unaryFunc("log", math.Log),
	unaryFunc("log10", math.Log10),
	unaryFunc("log2", math.Log2),
	unaryFunc("exp", math.Exp),
	unaryFunc("cbrt", math.Cbrt),
	binaryFunc("pow", func(x, y float64) (float64, error) { return math.Pow(x, y), nil }),
	binaryFunc("mod", floorMod),
	expr.Operator("%", "mod"),
}

func unaryFunc(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(params))
		}
		x, ok := toFloat(params[0])
		if !ok {
			return nil, fmt.Errorf("%s: argument must be a number", name)
		}
		return fn(x), nil
	}, new(func(float64) float64))
}

func binaryFunc(name string, fn func(x, y float64) (float64, error)) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(params))
		}
		x, okX := toFloat(params[0])
		y, okY := toFloat(params[1])
		if !okX || !okY {
			return nil, fmt.Errorf("%s: arguments must be numbers", name)
		}
		return fn(x, y)
	}, new(func(float64, float64) float64))
}

// floorMod returns x mod y with the sign of y, so -7 % 3 is 2.
func floorMod(x, y float64) (float64, error) {
	if y == 0 {
		return 0, errModuloByZero
	}
	return x - y*math.Floor(x/y), nil
}

// Evaluate computes a numeric expression. Evaluation failures and
// non-finite or non-numeric values yield an outcome carrying the error
// message and no result, together with the error.
func Evaluate(expression string) (EvaluationResult, error) {
	res := EvaluationResult{Expression: expression}
	value, err := evaluate(expression)
	if err != nil {
		res.Error = "Unable to calculate this expression: " + err.Error()
		return res, err
	}
	res.Result = &value
	return res, nil
}

func evaluate(expression string) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	program, err := expr.Compile(expression, calcOptions...)
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(program, calcEnv)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(out)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errInvalidResult
	}
	return f, nil
}

type calculatorInput struct {
	Expression string `mapstructure:"expression"`
}

// NewCalculatorTool returns the "calculator" expression-evaluation tool.
func NewCalculatorTool() *Spec {
	return NewSpec(string(ToolCalculator), calculatorDescription,
		ParameterSchema{
			Properties: map[string]Property{
				"expression": {Type: TypeString, Description: expressionDescription},
			},
			Required: []string{"expression"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			var in calculatorInput
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			return Evaluate(in.Expression)
		})
}
