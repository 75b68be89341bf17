package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingProcessor keeps the body of every exported record
type recordingProcessor struct {
	mu     sync.Mutex
	bodies []string
}

func (p *recordingProcessor) OnEmit(_ context.Context, r *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, r.Body().AsString())
	return nil
}

func (p *recordingProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }
func (p *recordingProcessor) Shutdown(context.Context) error                         { return nil }
func (p *recordingProcessor) ForceFlush(context.Context) error                       { return nil }

func (p *recordingProcessor) exported() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.bodies...)
}

func TestLoggerProvider_Disabled(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	base := zap.New(core)

	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, base)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLoggerProvider_Bridge(t *testing.T) {
	recorder := &recordingProcessor{}
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(recorder)),
		config:   LogsConfig{Enabled: true, ServiceName: "dropship-test"},
	}
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	core, logs := observer.New(zap.DebugLevel)
	log := lp.Bridge(zap.New(core), zapcore.InfoLevel)

	log.Debug("row skipped")
	log.Info("Catalog sync finished", zap.Int("created", 2))
	log.With(zap.String("supplier_code", "ACME")).Warn("Catalog fetch failed")

	// stdout core keeps everything, export starts at info
	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, []string{"Catalog sync finished", "Catalog fetch failed"}, recorder.exported())
}
