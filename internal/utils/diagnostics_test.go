package utils

import (
	"bytes"
	"strings"
	"testing"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	d.SetColors(false)
	d.SetShowTime(false)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		level    DiagnosticLevel
		stdout   []string
		stderr   []string
		excluded []string
	}{
		{DiagnosticSilent, nil, nil, []string{"[ERROR]", "[WARN]", "[INFO]"}},
		{DiagnosticError, nil, []string{"[ERROR] broken"}, []string{"[WARN]", "[INFO]"}},
		{DiagnosticInfo, []string{"[INFO] hello", "[SUCCESS] done"}, []string{"[ERROR] broken", "[WARN] careful"}, []string{"[VERBOSE]"}},
		{DiagnosticDebug, []string{"[VERBOSE] details", "[DEBUG] internals"}, nil, nil},
	}

	for _, tt := range tests {
		d, out, errOut := newTestDiagnostics(tt.level)
		d.Error("broken")
		d.Warn("careful")
		d.Info("hello")
		d.Success("done")
		d.Verbose("details")
		d.Debug("internals")

		for _, want := range tt.stdout {
			if !strings.Contains(out.String(), want) {
				t.Errorf("level %d: expected stdout to contain %q, got %q", tt.level, want, out.String())
			}
		}
		for _, want := range tt.stderr {
			if !strings.Contains(errOut.String(), want) {
				t.Errorf("level %d: expected stderr to contain %q, got %q", tt.level, want, errOut.String())
			}
		}
		all := out.String() + errOut.String()
		for _, unwanted := range tt.excluded {
			if strings.Contains(all, unwanted) {
				t.Errorf("level %d: unexpected %q in %q", tt.level, unwanted, all)
			}
		}
	}
}

func TestDiagnosticSystem_Structure(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Header("generating callables")
	d.PhaseHeader("Packages")
	d.Indent()
	d.List("%s", "./shapes")
	d.Unindent()
	d.Unindent()
	d.PhaseItem("parsed 2 containers")
	d.PhaseProgress("Writing shapes/autogen_argcall.go")
	d.Summary("Summary", map[string]interface{}{"b": 2, "a": 1})
	d.GenerationComplete()

	got := out.String()
	for _, want := range []string{
		"argcall: generating callables\n",
		"Packages:\n",
		"  - ./shapes\n",
		"✓ parsed 2 containers\n",
		"✏ Writing shapes/autogen_argcall.go\n",
		"   a: 1\n   b: 2\n",
		"argcall: generation complete",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestDiagnosticSystem_Dump(t *testing.T) {
	type container struct {
		Name    string
		Members []string
	}

	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Dump("metadata", container{Name: "Op"})
	if out.Len() != 0 {
		t.Errorf("expected no dump below debug level, got %q", out.String())
	}

	d, out, _ = newTestDiagnostics(DiagnosticDebug)
	d.Dump("metadata", container{Name: "Op", Members: []string{"Add"}})
	if !strings.Contains(out.String(), "metadata:") || !strings.Contains(out.String(), `Name: (string) (len=2) "Op"`) {
		t.Errorf("unexpected dump output:\n%s", out.String())
	}
}

func TestDiagnosticSystem_Colors(t *testing.T) {
	d, _, errOut := newTestDiagnostics(DiagnosticError)
	d.SetColors(true)
	d.Error("broken")
	if !strings.Contains(errOut.String(), "\x1b[31m[ERROR]") {
		t.Errorf("expected a red error tag, got %q", errOut.String())
	}
}
