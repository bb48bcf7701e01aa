package repl

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, input string, interactive bool) string {
	t.Helper()
	var out bytes.Buffer
	Start(strings.NewReader(input), &out, interactive)
	return out.String()
}

func TestSessionKeepsBindings(t *testing.T) {
	out := run(t, "let x = 40\nx + 2\n", false)
	if !strings.Contains(out, "42") {
		t.Errorf("session lost its bindings: %q", out)
	}
}

func TestNonInteractiveHasNoPrompt(t *testing.T) {
	out := run(t, "1 + 1\n", false)
	if strings.Contains(out, PROMPT) {
		t.Errorf("prompt printed in non-interactive mode: %q", out)
	}
}

func TestInteractivePrompt(t *testing.T) {
	out := run(t, "1\n", true)
	if !strings.HasPrefix(out, PROMPT) {
		t.Errorf("missing prompt: %q", out)
	}
}

func TestParserErrorsAreReported(t *testing.T) {
	out := run(t, "let = 5\n", false)
	if !strings.Contains(out, "parser errors") {
		t.Errorf("parse failure not reported: %q", out)
	}
}

func TestBuiltinsAvailable(t *testing.T) {
	out := run(t, `json_dump({"a": 1})`+"\n", false)
	if !strings.Contains(out, `{"a":1}`) {
		t.Errorf("codec builtins not wired: %q", out)
	}
}
