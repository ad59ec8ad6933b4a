package adaptive

import "testing"

func TestNewQuestionCopiesContext(t *testing.T) {
	original := map[string]any{ContextDomain: "math"}
	q := NewQuestion("What is 2+2?", original)

	original[ContextDomain] = "art"

	domain, ok := q.ContextString(ContextDomain)
	if !ok || domain != "math" {
		t.Errorf("expected domain %q, got %q", "math", domain)
	}
}

func TestQuestionBlank(t *testing.T) {
	cases := []struct {
		text  string
		blank bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"What?", false},
	}

	for _, tc := range cases {
		q := NewQuestion(tc.text, nil)
		if q.Blank() != tc.blank {
			t.Errorf("Blank(%q) = %t, expected %t", tc.text, q.Blank(), tc.blank)
		}
	}
}

func TestQuestionContextFloat(t *testing.T) {
	q := NewQuestion("q", map[string]any{
		"f64": 0.75,
		"f32": float32(0.5),
		"int": 1,
		"str": "nope",
	})

	if v, ok := q.ContextFloat("f64"); !ok || v != 0.75 {
		t.Errorf("f64: got %v, %t", v, ok)
	}
	if v, ok := q.ContextFloat("f32"); !ok || v != 0.5 {
		t.Errorf("f32: got %v, %t", v, ok)
	}
	if v, ok := q.ContextFloat("int"); !ok || v != 1.0 {
		t.Errorf("int: got %v, %t", v, ok)
	}
	if _, ok := q.ContextFloat("str"); ok {
		t.Error("expected string value to fail float conversion")
	}
	if _, ok := q.ContextFloat("missing"); ok {
		t.Error("expected missing key to report absence")
	}
}

func TestQuestionWithContextValueImmutable(t *testing.T) {
	q := NewQuestion("q", map[string]any{"a": 1})
	q2 := q.WithContextValue("b", 2)

	if _, ok := q.ContextValue("b"); ok {
		t.Error("receiver gained key added to copy")
	}
	if _, ok := q2.ContextValue("b"); !ok {
		t.Error("copy missing added key")
	}
	if _, ok := q2.ContextValue("a"); !ok {
		t.Error("copy missing original key")
	}
}

func TestQuestionWordCount(t *testing.T) {
	cases := []struct {
		text  string
		count int
	}{
		{"", 0},
		{"one", 1},
		{"two  words", 2},
		{"what is the meaning of life, the universe, and everything else here", 12},
	}

	for _, tc := range cases {
		q := NewQuestion(tc.text, nil)
		if got := q.WordCount(); got != tc.count {
			t.Errorf("WordCount(%q) = %d, expected %d", tc.text, got, tc.count)
		}
	}
}
