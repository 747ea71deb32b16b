package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "secret", r.URL.Query().Get("appid"))
			assert.Equal(t, "Gdynia", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"name":"Gdynia"}`))
		case "/fail":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
		case "/text":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream down`))
		case "/malformed":
			_, _ = w.Write([]byte(`{"name":`))
		}
	}))
	defer server.Close()

	client := NewClient("appid", "secret", zerolog.Nop())
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		body, err := Get(ctx, client, server.URL+"/ok", map[string]string{"q": "Gdynia"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Gdynia"}`, string(body))
	})

	t.Run("error status", func(t *testing.T) {
		body, err := Get(ctx, client, server.URL+"/fail", nil)
		assert.ErrorIs(t, err, ErrStatus)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, err.Error(), "Invalid API key")
		assert.Nil(t, body)
	})

	t.Run("error status with plain text body", func(t *testing.T) {
		_, err := Get(ctx, client, server.URL+"/text", nil)
		assert.ErrorIs(t, err, ErrStatus)
		assert.Contains(t, err.Error(), "upstream down")
	})

	t.Run("malformed body", func(t *testing.T) {
		body, err := Get(ctx, client, server.URL+"/malformed", nil)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Nil(t, body)
	})
}

func TestGet_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := Get(context.Background(), NewClient("appid", "secret", zerolog.Nop()), url, nil)
	assert.Error(t, err)
}
