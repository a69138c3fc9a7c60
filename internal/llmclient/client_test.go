package llmclient

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func skipIfNoLoopback(t *testing.T) {
	t.Helper()
	if ln, err := net.Listen("tcp4", "127.0.0.1:0"); err == nil {
		ln.Close()
		return
	}
	t.Skip("port binding not permitted in this environment; skipping")
}

func TestClientGenerateSuccess(t *testing.T) {
	skipIfNoLoopback(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var in generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "explain SBI SimplyCLICK Card", in.Prompt)
		_ = json.NewEncoder(w).Encode(generateResponse{Text: "the SimplyCLICK Card offers..."})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Model: "test-model"}, zap.NewNop())

	out, err := c.Generate(context.Background(), "explain SBI SimplyCLICK Card")
	require.NoError(t, err)
	assert.Equal(t, "the SimplyCLICK Card offers...", out)
}

func TestClientGenerateNon2xxIsError(t *testing.T) {
	skipIfNoLoopback(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, zap.NewNop())

	_, err := c.Generate(context.Background(), "anything")
	assert.Error(t, err)
}

func TestClientGenerateUnreachableSidecarIsError(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())

	_, err := c.Generate(context.Background(), "anything")
	assert.Error(t, err)
}
