package recaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_Disabled(t *testing.T) {
	client := NewClient("", "")
	assert.False(t, client.Enabled())

	// A disabled client accepts everything, including empty tokens
	ok, err := client.Verify(context.Background(), "", "")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_VerifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "test-secret", r.Form.Get("secret"))
		assert.Equal(t, "valid-token", r.Form.Get("response"))
		assert.Equal(t, "1.2.3.4", r.Form.Get("remoteip"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "hostname": "example.com"}`))
	}))
	defer server.Close()

	client := NewClient("test-secret", server.URL)
	assert.True(t, client.Enabled())

	ok, err := client.Verify(context.Background(), "valid-token", "1.2.3.4")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_VerifyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
	}))
	defer server.Close()

	client := NewClient("test-secret", server.URL)

	ok, err := client.Verify(context.Background(), "bad-token", "")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_EmptyToken(t *testing.T) {
	// An enabled client rejects empty tokens without calling the API
	client := NewClient("test-secret", "http://127.0.0.1:0")

	ok, err := client.Verify(context.Background(), "", "")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient("test-secret", server.URL)

	ok, err := client.Verify(context.Background(), "token", "")
	assert.Error(t, err)
	assert.False(t, ok)
}
