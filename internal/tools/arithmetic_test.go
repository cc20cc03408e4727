package tools

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"testing/quick"

	"github.com/crystaldolphin/toolcalc/internal/schema"
)

func finite(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b) && !math.IsInf(a, 0) && !math.IsInf(b, 0)
}

// ─── Pure operations ───────────────────────────────────────────────────────

func TestAdd_Property(t *testing.T) {
	f := func(a, b float64) bool {
		r := Add(a, b)
		return r.Operation == "addition" && r.Result != nil && *r.Result == a+b
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestSubtract_Property(t *testing.T) {
	f := func(a, b float64) bool {
		r := Subtract(a, b)
		return r.Operation == "subtraction" && r.Result != nil && *r.Result == a-b
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestMultiply_Property(t *testing.T) {
	f := func(a, b float64) bool {
		r := Multiply(a, b)
		return r.Operation == "multiplication" && r.Result != nil && *r.Result == a*b
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestDivide_ByZero(t *testing.T) {
	f := func(a float64) bool {
		r, err := Divide(a, 0)
		return errors.Is(err, ErrDivideByZero) && r.Result == nil && r.Error == "Cannot divide by zero"
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestDivide_NonZero(t *testing.T) {
	f := func(a, b float64) bool {
		if b == 0 || !finite(a, b) {
			return true
		}
		r, err := Divide(a, b)
		if err != nil || r.Result == nil {
			return false
		}
		want := a / b
		if math.IsInf(want, 0) || math.IsNaN(want) {
			return *r.Result == want || math.IsNaN(*r.Result)
		}
		return math.Abs(*r.Result-want) <= 1e-9*math.Max(1, math.Abs(want))
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestDivide_ZeroOutcomeHasNoResultField(t *testing.T) {
	r, _ := Divide(5, 0)
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["result"]; ok {
		t.Errorf("expected no result field, got %s", data)
	}
	if m["error"] != "Cannot divide by zero" {
		t.Errorf("unexpected error field: %v", m["error"])
	}
}

// ─── Tools through the registry ────────────────────────────────────────────

func TestArithmeticTools(t *testing.T) {
	reg := NewBuiltinRegistry()
	tests := []struct {
		tool      ToolName
		a, b      float64
		operation string
		want      float64
	}{
		{ToolAdd, 1847, 3256, "addition", 5103},
		{ToolSubtract, 50000, 37849, "subtraction", 12151},
		{ToolMultiply, 4729, 8361, "multiplication", 39539169},
		{ToolDivide, 10, 4, "division", 2.5},
	}

	for _, tc := range tests {
		t.Run(string(tc.tool), func(t *testing.T) {
			res := reg.Invoke(context.Background(), schema.ToolCallRequest{
				Id:        "call_1",
				Name:      string(tc.tool),
				Arguments: map[string]any{"a": tc.a, "b": tc.b},
			})
			if !res.OK() {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			var out ArithmeticResult
			if err := res.Decode(&out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Operation != tc.operation {
				t.Errorf("expected operation %q, got %q", tc.operation, out.Operation)
			}
			if out.Result == nil || *out.Result != tc.want {
				t.Errorf("expected result %v, got %v", tc.want, out.Result)
			}
			if out.A != tc.a || out.B != tc.b {
				t.Errorf("operands not echoed: got a=%v b=%v", out.A, out.B)
			}
		})
	}
}

func TestDivideTool_ByZeroIsRecovered(t *testing.T) {
	reg := NewBuiltinRegistry()
	res := reg.Invoke(context.Background(), schema.ToolCallRequest{
		Name:      "divide",
		Arguments: map[string]any{"a": 7, "b": 0},
	})

	var execErr *ToolExecutionError
	if !errors.As(res.Err, &execErr) {
		t.Fatalf("expected ToolExecutionError, got %v", res.Err)
	}
	if !errors.Is(res.Err, ErrDivideByZero) {
		t.Errorf("expected ErrDivideByZero in chain, got %v", res.Err)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(res.Content()), &out); err != nil {
		t.Fatalf("content is not JSON: %v", err)
	}
	if out["error"] != "Cannot divide by zero" {
		t.Errorf("unexpected content: %s", res.Content())
	}
	if _, ok := out["result"]; ok {
		t.Errorf("expected no result in %s", res.Content())
	}
}

func TestArithmeticTool_IntegerArguments(t *testing.T) {
	reg := NewBuiltinRegistry()
	res := reg.Invoke(context.Background(), schema.ToolCallRequest{
		Name:      "multiply",
		Arguments: map[string]any{"a": 6, "b": json.Number("7")},
	})
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	var out ArithmeticResult
	if err := res.Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out.Result != 42 {
		t.Errorf("expected 42, got %v", *out.Result)
	}
}
