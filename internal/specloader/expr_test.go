package specloader

import "testing"

func TestEval_SimpleComparisons(t *testing.T) {
	obs := map[string]any{"latencyMs": 120.0, "region": "us-east", "cached": true}

	cases := []struct {
		expr string
		want bool
	}{
		{"latencyMs <= 200", true},
		{"latencyMs < 100", false},
		{"region == 'us-east'", true},
		{"region != 'us-east'", false},
		{"cached == true", true},
		{"cached == false", false},
	}
	for _, c := range cases {
		got, err := Eval(c.expr, obs)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.expr, err)
		}
		if got != c.want {
			t.Errorf("%s: got %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEval_BooleanCombinators(t *testing.T) {
	obs := map[string]any{"latencyMs": 120.0, "errorRate": 0.01}

	got, err := Eval("latencyMs <= 200 && errorRate < 0.05", obs)
	if err != nil || !got {
		t.Fatalf("expected true, got %v err %v", got, err)
	}

	got, err = Eval("latencyMs > 500 || errorRate < 0.05", obs)
	if err != nil || !got {
		t.Fatalf("expected true via or-branch, got %v err %v", got, err)
	}

	got, err = Eval("(latencyMs <= 200 && errorRate < 0.001) || errorRate < 0.05", obs)
	if err != nil || !got {
		t.Fatalf("expected true via parenthesized grouping, got %v err %v", got, err)
	}
}

func TestEval_UnknownKeyIsNullAndComparisonIsFalse(t *testing.T) {
	obs := map[string]any{"latencyMs": 120.0}

	got, err := Eval("missingField == 'anything'", obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatalf("expected false for comparison against an unknown (null) key")
	}

	got, err = Eval("missingField != 'anything'", obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatalf("null comparisons must evaluate false even for !=, got true")
	}
}

func TestParse_RejectsMalformedExpression(t *testing.T) {
	_, err := Parse("latencyMs <=")
	if err == nil {
		t.Fatal("expected parse error for truncated expression")
	}

	_, err = Parse("latencyMs <= 200 &&")
	if err == nil {
		t.Fatal("expected parse error for trailing operator")
	}

	_, err = Parse("(latencyMs <= 200")
	if err == nil {
		t.Fatal("expected parse error for unbalanced parenthesis")
	}
}

func TestEval_TypeMismatchIsFalseNotError(t *testing.T) {
	obs := map[string]any{"cached": true}
	got, err := Eval("cached == 'true'", obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatalf("comparing a bool observation against a string literal should be false, not a type coercion")
	}
}
