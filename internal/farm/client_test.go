package farm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsphere/kesan/internal/config"
)

func TestPublicFetchLatest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dapi/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("d_id"))
		assert.Contains(t, r.Header.Get("Accept"), "application/json")
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"readings": [{"temp": 21.5, "timestamp": "2025-10-08 14:24:13"}, {"temp": 20.1}]}`))
	}))
	defer ts.Close()

	client := NewPublicClient(ts.URL, 5*time.Second)

	reading, err := client.FetchLatest(context.Background(), 2)
	require.NoError(t, err)
	assert.JSONEq(t, `{"temp": 21.5, "timestamp": "2025-10-08 14:24:13"}`, string(reading))
}

func TestPublicFetchLatestNoReadings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"readings": []}`))
	}))
	defer ts.Close()

	client := NewPublicClient(ts.URL, 5*time.Second)

	reading, err := client.FetchLatest(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, reading)
}

func TestPublicFetchLatestMissingReadingsField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"something": "else"}`))
	}))
	defer ts.Close()

	client := NewPublicClient(ts.URL, 5*time.Second)

	reading, err := client.FetchLatest(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, reading)
}

func TestPublicFetchLatestServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewPublicClient(ts.URL, 5*time.Second)

	_, err := client.FetchLatest(context.Background(), 2)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidData)
	assert.Contains(t, err.Error(), "500")
}

func TestPublicFetchLatestInvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer ts.Close()

	client := NewPublicClient(ts.URL, 5*time.Second)

	_, err := client.FetchLatest(context.Background(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestPublicFetchLatestUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	client := NewPublicClient(ts.URL, time.Second)

	_, err := client.FetchLatest(context.Background(), 2)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidData)
}

func TestLegacyFetchLatest(t *testing.T) {
	var loggedIn bool

	mux := http.NewServeMux()
	mux.HandleFunc("/getCSRF", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"csrf_name": "csrf_test", "csrf_token": "tok123"}`))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "farmer", r.PostFormValue("username"))
		assert.Equal(t, "secret", r.PostFormValue("password"))
		assert.Equal(t, "tok123", r.PostFormValue("csrf_test"))
		loggedIn = true
		_, _ = w.Write([]byte("Login successful"))
	})
	mux.HandleFunc("/live-data/7", func(w http.ResponseWriter, r *http.Request) {
		require.True(t, loggedIn, "live-data fetched before login")
		_, _ = w.Write([]byte(`{"data": [{"humidity": 64, "timestamp": "2025-10-08 14:24:13"}]}`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewLegacyClient(ts.URL, "farmer", "secret", 5*time.Second)

	reading, err := client.FetchLatest(context.Background(), 7)
	require.NoError(t, err)
	assert.JSONEq(t, `{"humidity": 64, "timestamp": "2025-10-08 14:24:13"}`, string(reading))
}

func TestLegacyFetchLatestNoData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/getCSRF", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"csrf_name": "csrf_test", "csrf_token": "tok123"}`))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Login successful"))
	})
	mux.HandleFunc("/live-data/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewLegacyClient(ts.URL, "farmer", "secret", 5*time.Second)

	reading, err := client.FetchLatest(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, reading)
}

func TestLegacyLoginFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/getCSRF", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"csrf_name": "csrf_test", "csrf_token": "tok123"}`))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("error: invalid credentials"))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewLegacyClient(ts.URL, "farmer", "wrong", 5*time.Second)

	_, err := client.FetchLatest(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
}

func TestLegacyCSRFFetchInvalid(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/getCSRF", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewLegacyClient(ts.URL, "farmer", "secret", 5*time.Second)

	_, err := client.FetchLatest(context.Background(), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestNewSource(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.FarmConfig
		wantErr string
	}{
		{
			name: "public",
			cfg:  config.FarmConfig{BaseURL: "http://farm.example", Source: "public"},
		},
		{
			name: "legacy with credentials",
			cfg:  config.FarmConfig{BaseURL: "http://farm.example", Source: "legacy", Username: "u", Password: "p"},
		},
		{
			name:    "legacy without credentials",
			cfg:     config.FarmConfig{BaseURL: "http://farm.example", Source: "legacy"},
			wantErr: "FARM_USERNAME",
		},
		{
			name:    "missing base URL",
			cfg:     config.FarmConfig{Source: "public"},
			wantErr: "base URL",
		},
		{
			name:    "unknown source",
			cfg:     config.FarmConfig{BaseURL: "http://farm.example", Source: "ftp"},
			wantErr: "unknown farm API source",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := NewSource(&tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, src)
		})
	}
}
