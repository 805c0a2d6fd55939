package tool

import (
	"context"
	"testing"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := map[string]float64{
		"2 + 3 * (4 - 1)":   11,
		"-2^2":              -4,
		"2^3^2":             512,
		"2 * -3":            -6,
		"10 % 4":            2,
		"(45 + 30.5) * 3":   226.5,
		"1,200 / 4":         300,
		"((1))":             1,
		"7 - 2 - 1":         4,
		"+5":                5,
		"100 / 8 * 2 + 0.5": 25.5,
	}
	for expr, want := range tests {
		got, err := Evaluate(expr)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", expr, err)
		}
		if got != want {
			t.Fatalf("%q: expected %v, got %v", expr, want, got)
		}
	}
}

func TestEvaluateRejects(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"", "2 + abc", "(1 + 2", "1 + 2)", "4 / 0", "5 % 0", "1..2", "3 +", "* 2"} {
		if _, err := Evaluate(expr); err == nil {
			t.Fatalf("%q: expected error", expr)
		}
	}
}

func TestMathToolResult(t *testing.T) {
	t.Parallel()

	out, err := NewExecutor(nil, nil)(context.Background(), ToolMathEvaluate, map[string]any{
		"expression": " 45 * 3 ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := out.Result.(MathEvaluateOutput)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if result.Result != 135 || result.Expression != "45 * 3" {
		t.Fatalf("unexpected result: %+v", result)
	}

	out, _ = NewExecutor(nil, nil)(context.Background(), ToolMathEvaluate, map[string]any{})
	if out.Error != "expression is required" {
		t.Fatalf("unexpected error text: %q", out.Error)
	}
}
