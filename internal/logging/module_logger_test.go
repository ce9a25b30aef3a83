package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

type recordingLogger struct {
	fields map[string]any
}

var _ interfaces.Logger = (*recordingLogger)(nil)
var _ interfaces.FieldsLogger = (*recordingLogger)(nil)

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{fields: merged}
}

type stubProvider struct {
	logger interfaces.Logger
	names  []string
}

func (p *stubProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}

	logger := BatcherLogger(provider)

	recorded, ok := logger.(*recordingLogger)
	if !ok {
		t.Fatalf("expected recordingLogger, got %T", logger)
	}
	if recorded.fields["module"] != "translate.batcher" {
		t.Fatalf("unexpected module field %v", recorded.fields["module"])
	}
	if len(provider.names) != 1 || provider.names[0] != "translate.batcher" {
		t.Fatalf("unexpected provider lookups %v", provider.names)
	}
}

func TestModuleLoggerDefaultsToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "")
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	// Must not panic.
	logger.Info("noop")
	logger.WithContext(context.Background()).Error("still noop")
}

func TestWithFieldsSkipsEmptyInput(t *testing.T) {
	base := &recordingLogger{}
	if got := WithFields(base, nil); got != base {
		t.Fatalf("expected same logger for empty fields, got %T", got)
	}

	child := WithFields(base, map[string]any{"job_id": "j1"})
	recorded, ok := child.(*recordingLogger)
	if !ok {
		t.Fatalf("expected recordingLogger, got %T", child)
	}
	if recorded.fields["job_id"] != "j1" {
		t.Fatalf("unexpected fields %v", recorded.fields)
	}
}
