package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	stream "github.com/MemoryInterconnect/STREAM"
)

func runCapture(t *testing.T, args ...string) (code int, out, errOut string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code = run(append([]string{"stream"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunDefault(t *testing.T) {
	code, out, _ := runCapture(t)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\n%s", code, out)
	}

	for _, want := range []string{
		"Usage: \tstream \t\t\t\t\t- Local RAM test with 80 bytes",
		"STREAM version $Revision: 5.10 $",
		"This system uses 8 bytes per array element.",
		"Array size = 512 (elements), Offset = 0 (elements)",
		"Each kernel will be executed 10 times.",
		"Your clock granularity",
		"Function    Best Rate MB/s  Avg time     Min time     Max time",
		"Copy:      ",
		"Scale:     ",
		"Add:       ",
		"Triad:     ",
		"Solution Validates: avg error less than 1.000000e-13 on all three arrays",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Results logged to") {
		t.Error("run without -log should not write a session log")
	}
}

func TestRunUnopenableDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "mem0")
	code, out, _ := runCapture(t, "4096", path)

	if code != 1 {
		t.Fatalf("exit code = %d, want 1\n%s", code, out)
	}
	if !strings.Contains(out, path+" is not opened") {
		t.Errorf("output should name the unopenable device:\n%s", out)
	}
	// The run must stop before any kernel work.
	for _, stale := range []string{
		"Function    Best Rate MB/s",
		"Copy:      ",
		"Solution Validates",
	} {
		if strings.Contains(out, stale) {
			t.Errorf("output after a failed open contains %q:\n%s", stale, out)
		}
	}
}

func TestRunDeviceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem0")
	// Room for three two-page windows at offset 0x2000.
	if err := os.WriteFile(path, make([]byte, 8*4096), 0644); err != nil {
		t.Fatal(err)
	}

	code, out, _ := runCapture(t, "8192", path, "0x2000")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\n%s", code, out)
	}
	if want := fmt.Sprintf("Arrays mapped from %s at offset 0x2000.", path); !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
	if !strings.Contains(out, "Array size = 1024 (elements)") {
		t.Errorf("8192 bytes of float64 should give 1024 elements:\n%s", out)
	}
	if !strings.Contains(out, "Solution Validates") {
		t.Errorf("device-backed run should validate:\n%s", out)
	}
}

func TestRunSizeFallback(t *testing.T) {
	// An unparseable size behaves like no size at all.
	code, out, _ := runCapture(t, "not-a-number")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\n%s", code, out)
	}
	if !strings.Contains(out, "Array size = 512 (elements)") {
		t.Errorf("junk size should fall back to the default:\n%s", out)
	}
}

func TestRunFlagHandling(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"reps clamp", []string{"-reps", "1"}, "Each kernel will be executed 2 times."},
		{"reps explicit", []string{"-reps", "4"}, "Each kernel will be executed 4 times."},
		{"float32 width", []string{"-float32"}, "This system uses 4 bytes per array element."},
		{"float32 epsilon", []string{"-float32"}, "avg error less than 1.000000e-06"},
		{"verbose block", []string{"-v"}, "Results Validation Verbose Results: "},
		{"thread count", []string{"-threads", "2"}, "Number of Threads requested = 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := runCapture(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit code = %d, want 0\n%s", code, out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestRunBadFlag(t *testing.T) {
	code, _, errOut := runCapture(t, "-definitely-not-a-flag")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(errOut, "Usage: stream [flags] [size] [device] [offset]") {
		t.Errorf("stderr should carry the flag usage:\n%s", errOut)
	}
}

func TestRunSessionLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	code, out, errOut := runCapture(t, "-log", dir, "-reps", "3")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\n%s\n%s", code, out, errOut)
	}
	if !strings.Contains(out, "Results logged to ") {
		t.Fatalf("output missing the log confirmation:\n%s", out)
	}

	path, err := stream.LatestLogFile(dir)
	if err != nil {
		t.Fatalf("no session file written: %v", err)
	}
	records, err := stream.ReadRunRecords(path)
	if err != nil {
		t.Fatalf("session file unreadable: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("session holds %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Repetitions != 3 || !rec.Validated || len(rec.Kernels) != stream.NumKernels {
		t.Errorf("logged record %+v does not match the run", rec)
	}
}
