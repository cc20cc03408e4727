package tools

import (
	"context"
	"errors"
)

// ErrDivideByZero is returned by Divide when the divisor is exactly zero.
var ErrDivideByZero = errors.New("Cannot divide by zero")

// ArithmeticResult is the outcome of a two-operand arithmetic tool.
// Result is nil when the operation failed.
type ArithmeticResult struct {
	Operation string   `json:"operation"`
	A         float64  `json:"a"`
	B         float64  `json:"b"`
	Result    *float64 `json:"result,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func arithmetic(op string, a, b, result float64) ArithmeticResult {
	return ArithmeticResult{Operation: op, A: a, B: b, Result: &result}
}

// Add returns a + b.
func Add(a, b float64) ArithmeticResult { return arithmetic("addition", a, b, a+b) }

// Subtract returns a - b.
func Subtract(a, b float64) ArithmeticResult { return arithmetic("subtraction", a, b, a-b) }

// Multiply returns a * b.
func Multiply(a, b float64) ArithmeticResult { return arithmetic("multiplication", a, b, a*b) }

// Divide returns a / b. A zero divisor yields an outcome carrying the error
// message and no result, together with ErrDivideByZero.
func Divide(a, b float64) (ArithmeticResult, error) {
	if b == 0 {
		return ArithmeticResult{Operation: "division", A: a, B: b, Error: ErrDivideByZero.Error()}, ErrDivideByZero
	}
	return arithmetic("division", a, b, a/b), nil
}

type operands struct {
	A float64 `mapstructure:"a"`
	B float64 `mapstructure:"b"`
}

func operandSchema(aDesc, bDesc string) ParameterSchema {
	return ParameterSchema{
		Properties: map[string]Property{
			"a": {Type: TypeNumber, Description: aDesc},
			"b": {Type: TypeNumber, Description: bDesc},
		},
		Required: []string{"a", "b"},
	}
}

func binaryExecutor(op func(a, b float64) (ArithmeticResult, error)) Executor {
	return func(_ context.Context, args map[string]any) (any, error) {
		var in operands
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return op(in.A, in.B)
	}
}

func infallible(op func(a, b float64) ArithmeticResult) func(a, b float64) (ArithmeticResult, error) {
	return func(a, b float64) (ArithmeticResult, error) { return op(a, b), nil }
}

// NewAddTool returns the "add" tool.
func NewAddTool() *Spec {
	return NewSpec(string(ToolAdd), "Add two numbers together",
		operandSchema("First number", "Second number"),
		binaryExecutor(infallible(Add)))
}

// NewSubtractTool returns the "subtract" tool.
func NewSubtractTool() *Spec {
	return NewSpec(string(ToolSubtract), "Subtract one number from another",
		operandSchema("First number (minuend)", "Second number (subtrahend)"),
		binaryExecutor(infallible(Subtract)))
}

// NewMultiplyTool returns the "multiply" tool.
func NewMultiplyTool() *Spec {
	return NewSpec(string(ToolMultiply), "Multiply two numbers together",
		operandSchema("First number", "Second number"),
		binaryExecutor(infallible(Multiply)))
}

// NewDivideTool returns the "divide" tool.
func NewDivideTool() *Spec {
	return NewSpec(string(ToolDivide), "Divide one number by another",
		operandSchema("Dividend (number to be divided)", "Divisor (number to divide by)"),
		binaryExecutor(Divide))
}
