package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const symmetricQuery = "p0x=0&p0y=10&p1x=-10&p1y=0&p2x=10&p2y=0&p3x=0&p3y=-10&fm=10&fd=270"

func TestParseQueryArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // value of p0y
	}{
		{"bare", "p0y=10&fm=1", "10"},
		{"leading question mark", "?p0y=10", "10"},
		{"full url", "https://example.com/diagram?p0y=10#top", "10"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parseQueryArg(tt.in)
			if err != nil {
				t.Fatalf("parseQueryArg(%q) error: %v", tt.in, err)
			}
			if got := q.Get("p0y"); got != tt.want {
				t.Errorf("p0y = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := parseQueryArg("p0y=%zz"); err == nil {
		t.Error("expected error for bad escape")
	}
}

func TestSolveJSON(t *testing.T) {
	isolate(t)
	out, err := run(t, "solve", "--json", symmetricQuery)
	if err != nil {
		t.Fatalf("solve error: %v", err)
	}

	var got readoutJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.State["fd"] != 270 {
		t.Errorf("fd = %v, want 270", got.State["fd"])
	}
	values := map[string]string{}
	for _, l := range got.Readout {
		values[l.Name] = l.Value
	}
	if want := "7.1 N"; values["Tension P1-P3"] != want {
		t.Errorf("Tension P1-P3 = %q, want %q", values["Tension P1-P3"], want)
	}
	if want := "100.0 N⋅m"; values["Torque P1"] != want {
		t.Errorf("Torque P1 = %q, want %q", values["Torque P1"], want)
	}
}

func TestSolveTable(t *testing.T) {
	isolate(t)
	out, err := run(t, "solve")
	if err != nil {
		t.Fatalf("solve error: %v", err)
	}
	for _, want := range []string{"Tension P1-P3", "35.4 N", "Net torque"} {
		if !strings.Contains(out, want) {
			t.Errorf("solve output missing %q:\n%s", want, out)
		}
	}
}

func TestSolveRejectsIncompleteQuery(t *testing.T) {
	isolate(t)
	if _, err := run(t, "solve", "p0x=1"); err == nil {
		t.Error("expected error for incomplete query")
	}
}

func TestLabels(t *testing.T) {
	isolate(t)
	out, err := run(t, "labels")
	if err != nil {
		t.Fatalf("labels error: %v", err)
	}
	for _, want := range []string{"P0", "P1", "P2", "P3", "Octant"} {
		if !strings.Contains(out, want) {
			t.Errorf("labels output missing %q:\n%s", want, out)
		}
	}
}

func TestStateEncodeDecode(t *testing.T) {
	for _, codec := range []string{"json", "msgpack"} {
		t.Run(codec, func(t *testing.T) {
			isolate(t)
			blob := filepath.Join(t.TempDir(), "state.bin")

			encoded, err := run(t, "state", "encode", "--codec", codec, "--blob", blob, symmetricQuery)
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}
			decoded, err := run(t, "state", "decode", "--codec", codec, blob)
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if encoded != decoded {
				t.Errorf("decode = %q, want %q", decoded, encoded)
			}
		})
	}
}

func TestStateDecodeRejectsBadBlob(t *testing.T) {
	isolate(t)
	blob := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(blob, []byte(`{"p0x":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "state", "decode", blob); err == nil {
		t.Error("expected error for incomplete blob")
	}
}

func TestStateSaveResolveClear(t *testing.T) {
	isolate(t)

	out, err := run(t, "state", "resolve", "--session", "abc")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if strings.Contains(out, "fd=270") {
		t.Fatalf("fresh resolve = %q, want defaults", out)
	}

	if _, err := run(t, "state", "save", "--session", "abc", symmetricQuery); err != nil {
		t.Fatalf("save error: %v", err)
	}
	out, err = run(t, "state", "resolve", "--session", "abc")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if !strings.Contains(out, "fd=270") {
		t.Errorf("resolve after save = %q, want stored state", out)
	}

	// A complete query still wins over the stored blob.
	out, err = run(t, "state", "resolve", "--session", "abc", strings.Replace(symmetricQuery, "fd=270", "fd=90", 1))
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if !strings.Contains(out, "fd=90") {
		t.Errorf("resolve with query = %q, want query state", out)
	}

	if _, err := run(t, "state", "clear", "--session", "abc"); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	out, err = run(t, "state", "resolve", "--session", "abc")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if strings.Contains(out, "fd=270") {
		t.Errorf("resolve after clear = %q, want defaults", out)
	}
}

func TestStateRejectsBadSession(t *testing.T) {
	isolate(t)
	if _, err := run(t, "state", "resolve", "--session", "../etc"); err == nil {
		t.Error("expected error for invalid session id")
	}
}

func TestStoragePathAndClear(t *testing.T) {
	_, cacheDir := isolate(t)
	out, err := run(t, "storage", "path")
	if err != nil {
		t.Fatalf("storage path error: %v", err)
	}
	want := filepath.Join(cacheDir, appName)
	if strings.TrimSpace(out) != want {
		t.Errorf("storage path = %q, want %q", strings.TrimSpace(out), want)
	}

	if _, err := run(t, "state", "save", "--session", "abc", symmetricQuery); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if _, err := run(t, "storage", "clear"); err != nil {
		t.Fatalf("storage clear error: %v", err)
	}
	out, err = run(t, "state", "resolve", "--session", "abc")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if strings.Contains(out, "fd=270") {
		t.Errorf("resolve after storage clear = %q, want defaults", out)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the command name")
	}
}
