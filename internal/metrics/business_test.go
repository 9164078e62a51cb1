package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine matches a sample by name, a partial label pattern and value.
// The exporter adds otel scope labels, hence the regexp.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	assert.Regexp(t, name+`\{[^}]*`+labels+`[^}]*\} `+value, output)
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("identity")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "identity")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "auth", "login", "success")
	bm.RecordOperation(ctx, "auth", "login", "success")
	bm.RecordOperation(ctx, "auth", "login", "error")
	bm.RecordOperation(ctx, "user", "add_roles", "success")
	bm.RecordDuration(ctx, "auth", "login", 40*time.Millisecond, "success")
	bm.RecordDuration(ctx, "auth", "login", 60*time.Millisecond, "success")
	bm.RecordDuration(ctx, "role", "create", 5*time.Millisecond, "error")

	output := scrape(t, provider)

	assertMetricLine(t, output, `identity_operations_total`,
		`domain="auth".*operation="login".*status="success"`, `2`)
	assertMetricLine(t, output, `identity_operations_total`,
		`domain="auth".*operation="login".*status="error"`, `1`)
	assertMetricLine(t, output, `identity_operations_total`,
		`domain="user".*operation="add_roles".*status="success"`, `1`)
	assertMetricLine(t, output, `identity_operation_duration_seconds_count`,
		`domain="auth".*operation="login".*status="success"`, `2`)
	assertMetricLine(t, output, `identity_operation_duration_seconds_count`,
		`domain="role".*operation="create".*status="error"`, `1`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	assert.IsType(t, &NoOpBusinessMetrics{}, bm)
	assert.NotPanics(t, func() {
		bm.RecordOperation(context.Background(), "auth", "refresh", "error")
		bm.RecordDuration(context.Background(), "auth", "refresh", time.Second, "error")
	})
}
