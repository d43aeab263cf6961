package logger

import (
	"fmt"
	"testing"
)

type recorder struct {
	lines []string
}

func (r *recorder) record(level, message string, keyvals []any) {
	r.lines = append(r.lines, fmt.Sprintf("%s %s %v", level, message, keyvals))
}

func (r *recorder) Log(message string, keyvals ...any) { r.record("log", message, keyvals) }
func (r *recorder) Debug(message string, keyvals ...any) { r.record("debug", message, keyvals) }
func (r *recorder) Info(message string, keyvals ...any) { r.record("info", message, keyvals) }
func (r *recorder) Warn(message string, keyvals ...any) { r.record("warn", message, keyvals) }
func (r *recorder) Error(message string, keyvals ...any) { r.record("error", message, keyvals) }
func (r *recorder) Fatal(message string, keyvals ...any) { r.record("fatal", message, keyvals) }

func TestDispatch(t *testing.T) {
	t.Cleanup(func() { Init() })

	a, b := &recorder{}, &recorder{}
	Init(a, b)

	Info("[Layout] Composed scene", "nodes", 3)
	Warn("[Server] Rejected layout request")

	want := []string{"info [Layout] Composed scene [nodes 3]", "warn [Server] Rejected layout request []"}
	for _, r := range []*recorder{a, b} {
		if len(r.lines) != len(want) {
			t.Fatalf("lines = %q, want %q", r.lines, want)
		}
		for i := range want {
			if r.lines[i] != want[i] {
				t.Errorf("line %d = %q, want %q", i, r.lines[i], want[i])
			}
		}
	}
}

func TestNoBackends(t *testing.T) {
	Init()
	Error("dropped", "err", "nothing registered")
}
