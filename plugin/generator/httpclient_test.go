package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/generation/generate", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "What is a mutex?", req["prompt"])
		require.Equal(t, "explanation", req["generation_type"])

		_ = json.NewEncoder(w).Encode(map[string]string{"content": "A mutex is a lock."})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	result, err := client.Generate(context.Background(), &Request{
		Prompt: "What is a mutex?",
		Kind:   KindExplanation,
	})
	require.NoError(t, err)
	require.Equal(t, "A mutex is a lock.", result.Content)
}

func TestHTTPClientGenerateSendsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Context []string `json:"context"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"user: hi", "assistant: hello"}, req.Context)

		_ = json.NewEncoder(w).Encode(map[string]string{"content": "ok"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), &Request{
		Prompt:  "continue",
		Kind:    KindTheory,
		Context: []string{"user: hi", "assistant: hello"},
	})
	require.NoError(t, err)
}

func TestHTTPClientGenerateBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), &Request{Prompt: "x", Kind: KindLab})
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestHTTPClientGenerateMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), &Request{Prompt: "x", Kind: KindExplanation})
	require.Error(t, err)
}

func TestHTTPClientGenerateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"content": ""})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), &Request{Prompt: "x", Kind: KindExplanation})
	require.Error(t, err)
}

func TestHTTPClientGenerateTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]string{"content": "late"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 50*time.Millisecond)
	_, err := client.Generate(context.Background(), &Request{Prompt: "x", Kind: KindExplanation})
	require.Error(t, err)
}

func TestHTTPClientGenerateContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]string{"content": "late"})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Generate(ctx, &Request{Prompt: "x", Kind: KindExplanation})
	require.Error(t, err)
}
