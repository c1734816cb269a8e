package topics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supplierServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Messages)

		w.WriteHeader(status)
		body, _ := json.Marshal(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *PerplexityClient {
	t.Helper()
	client, err := NewPerplexityClient(PerplexityConfig{APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)
	return client
}

func TestGenerateTopicsParsesArray(t *testing.T) {
	content := `Hier zijn de onderwerpen:
[
  {"title": "Minder vlees eten", "description": "Moet de overheid vleesconsumptie ontmoedigen?", "category": "milieu"},
  {"title": "Incompleet", "description": "", "category": "onderwijs"},
  {"title": "Gratis OV voor scholieren", "description": "Moet openbaar vervoer gratis worden voor scholieren?", "category": "maatschappij"}
]`
	srv := supplierServer(t, content, http.StatusOK)
	client := newTestClient(t, srv.URL)

	got, err := client.GenerateTopics(context.Background(), 3)
	require.NoError(t, err)

	// The incomplete triple is filtered out.
	require.Len(t, got, 2)
	assert.Equal(t, "Minder vlees eten", got[0].Title)
	assert.Equal(t, "maatschappij", got[1].Category)
}

func TestGenerateTopicsNoArrayInReply(t *testing.T) {
	srv := supplierServer(t, "Sorry, ik kan geen onderwerpen bedenken.", http.StatusOK)
	client := newTestClient(t, srv.URL)

	_, err := client.GenerateTopics(context.Background(), 3)
	assert.ErrorContains(t, err, "no JSON array")
}

func TestGenerateTopicsUpstreamError(t *testing.T) {
	srv := supplierServer(t, "", http.StatusTooManyRequests)
	client := newTestClient(t, srv.URL)

	_, err := client.GenerateTopics(context.Background(), 3)
	assert.ErrorContains(t, err, "status 429")
}

func TestNewPerplexityClientRequiresKey(t *testing.T) {
	_, err := NewPerplexityClient(PerplexityConfig{})
	assert.Error(t, err)
}
