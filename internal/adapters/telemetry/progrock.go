// Package telemetry provides build progress recording adapters.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"github.com/farm-framework/forge/internal/core/ports"
	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
)

var _ ports.Tracer = (*Recorder)(nil)

// Recorder implements ports.Tracer using the progrock library: every span is
// recorded as a progrock vertex, with cache hits marked as cached vertices.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start begins recording a vertex for one unit of work.
func (r *Recorder) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return ctx, &vertexSpan{vertex: v}
}

// EmitPlan records the planned task set as a single vertex so the plan shows
// up ahead of execution.
func (r *Recorder) EmitPlan(_ context.Context, taskNames []string) {
	v := r.rec.Vertex(digest.FromString("plan"), "plan")
	_, _ = fmt.Fprintf(v.Stdout(), "planned tasks: %s\n", strings.Join(taskNames, ", "))
	v.Done(nil)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// vertexSpan implements ports.Span wrapping *progrock.VertexRecorder.
type vertexSpan struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write sends output bytes to the vertex's stdout stream.
func (s *vertexSpan) Write(p []byte) (int, error) {
	return s.vertex.Stdout().Write(p)
}

// RecordError records an error for the span; it is reported on End.
func (s *vertexSpan) RecordError(err error) {
	s.err = err
}

// Cached marks the vertex as a cache hit.
func (s *vertexSpan) Cached() {
	s.vertex.Cached()
}

// End completes the vertex, carrying any recorded error.
func (s *vertexSpan) End() {
	s.vertex.Done(s.err)
}
