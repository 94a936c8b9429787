package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestFileExporter_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"existing":true}`+"\n"), 0600))

	exp, err := NewFileExporter(path)
	require.NoError(t, err)
	stub := tracetest.SpanStub{Name: SpanBuild, StartTime: time.Now(), EndTime: time.Now().Add(time.Millisecond)}
	require.NoError(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exp.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	lines := 0
	for sc := bufio.NewScanner(f); sc.Scan(); {
		lines++
	}
	require.Equal(t, 2, lines)
}

func TestFileExporter_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Now()
	stub := tracetest.SpanStub{
		Name:      SpanPhasePrefix + "construct",
		SpanKind:  trace.SpanKindInternal,
		StartTime: start,
		EndTime:   start.Add(25 * time.Millisecond),
		Status:    sdktrace.Status{Code: codes.Error, Description: "fragments failed"},
		Attributes: []attribute.KeyValue{
			attribute.String(AttrRigName, "hero"),
			attribute.Int(AttrBuildBuilt, 3),
		},
		Events: []sdktrace.Event{{
			Name:       EventFragmentFailed,
			Time:       start,
			Attributes: []attribute.KeyValue{attribute.String(AttrComponentType, "bogus")},
		}},
	}
	require.NoError(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exp.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var rec SpanRecord
	require.NoError(t, json.NewDecoder(f).Decode(&rec))

	require.Equal(t, "build.phase.construct", rec.Name)
	require.Equal(t, "INTERNAL", rec.Kind)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "fragments failed", rec.StatusMsg)
	require.InDelta(t, 25.0, rec.DurationMs, 0.001)
	require.Equal(t, "hero", rec.Attributes[AttrRigName])
	require.EqualValues(t, 3, rec.Attributes[AttrBuildBuilt])
	require.Len(t, rec.Events, 1)
	require.Equal(t, "bogus", rec.Events[0].Attributes[AttrComponentType])
}

func TestFileExporter_AfterShutdown(t *testing.T) {
	exp, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	require.Error(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exp.ExportSpans(context.Background(), nil))
}

func TestFileExporter_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				stub := tracetest.SpanStub{
					Name:       "span",
					StartTime:  time.Now(),
					EndTime:    time.Now(),
					Attributes: []attribute.KeyValue{attribute.Int("worker", w), attribute.Int("i", i)},
				}
				_ = exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, exp.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	count := 0
	for sc := bufio.NewScanner(f); sc.Scan(); {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		count++
	}
	require.Equal(t, 200, count)
}
