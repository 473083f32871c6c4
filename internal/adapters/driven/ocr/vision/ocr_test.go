package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// pngHeader is enough of a PNG signature for content type sniffing.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

// chatServer returns a test server that answers every chat completion
// with the given content.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestService_DetectElements(t *testing.T) {
	server := chatServer(t, `{"is_table": true, "text_len": 42}`)
	defer server.Close()

	svc, err := New(Config{APIKey: "test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	verdict, err := svc.DetectElements(context.Background(), domain.ImageRegion{Data: pngHeader})
	require.NoError(t, err)
	assert.True(t, verdict.IsTable)
	assert.Equal(t, 42, verdict.TextLen)
}

func TestService_DetectElements_FencedReply(t *testing.T) {
	server := chatServer(t, "```json\n{\"is_table\": false, \"text_len\": 7}\n```")
	defer server.Close()

	svc, err := New(Config{APIKey: "test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	verdict, err := svc.DetectElements(context.Background(), domain.ImageRegion{Data: pngHeader})
	require.NoError(t, err)
	assert.False(t, verdict.IsTable)
	assert.Equal(t, 7, verdict.TextLen)
}

func TestService_DetectElements_UnparseableReply(t *testing.T) {
	server := chatServer(t, "it looks like a table to me")
	defer server.Close()

	svc, err := New(Config{APIKey: "test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = svc.DetectElements(context.Background(), domain.ImageRegion{Data: pngHeader})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_DetectElements_NoBytes(t *testing.T) {
	svc, err := New(Config{APIKey: "test"})
	require.NoError(t, err)

	_, err = svc.DetectElements(context.Background(), domain.ImageRegion{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_ExtractText(t *testing.T) {
	server := chatServer(t, "  Quarterly totals by region  ")
	defer server.Close()

	svc, err := New(Config{APIKey: "test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	text, err := svc.ExtractText(context.Background(), domain.ImageRegion{Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "Quarterly totals by region", text)
}

func TestDataURL_SniffsPNG(t *testing.T) {
	url := dataURL(pngHeader)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(` {"a":1} `))
}
