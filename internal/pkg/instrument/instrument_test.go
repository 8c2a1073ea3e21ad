package instrument

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNoop(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "NilConfig", cfg: nil},
		{name: "Disabled", cfg: &Config{ServiceName: "usercredential", MaskFields: []string{"pin"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ins, err := New(ctx, tt.cfg)
			require.NoError(t, err)

			_, span := ins.Tracer("test").Start(ctx, "op")
			span.End()
			assert.False(t, span.SpanContext().IsValid())

			counter, err := ins.Meter("test").Int64Counter("calls")
			require.NoError(t, err)
			counter.Add(ctx, 1)

			assert.NoError(t, ins.Shutdown(ctx))
		})
	}
}

func TestAttemptID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, AttemptID(ctx))

	ctx = WithAttemptID(ctx, "att-1")
	assert.Equal(t, "att-1", AttemptID(ctx))
}
