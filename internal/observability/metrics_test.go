package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	SetActiveSessions(3)
	RecordTurn("user")
	RecordHistoryTrim(2)
	RecordHistoryTrim(0)
	RecordFragment("openai")
	RecordStream("openai", 150*time.Millisecond, "")
	RecordStream("openai", 10*time.Millisecond, "quota")
	SetGatewayClients(1)

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "chat_active_sessions 3")
	assert.Contains(t, text, `chat_turns_total{role="user"}`)
	assert.Contains(t, text, "chat_history_trimmed_total")
	assert.Contains(t, text, `chat_stream_fragments_total{provider="openai"}`)
	assert.Contains(t, text, `chat_stream_total{provider="openai",status="error"}`)
	assert.Contains(t, text, `chat_stream_errors_total{kind="quota",provider="openai"}`)
	assert.Contains(t, text, "chat_gateway_clients 1")
}
