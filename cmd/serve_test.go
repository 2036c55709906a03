package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scrape-service/internal/config"
	"github.com/sells-group/scrape-service/internal/server"
)

// getFreePort returns a free TCP port on localhost.
func getFreePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func TestServe_ServerLifecycle(t *testing.T) {
	// Full start + request + graceful shutdown cycle against a real pipeline.
	pipeline := newPipeline(&config.Config{
		Scrape: config.ScrapeConfig{
			UserAgent:          "scrape-test/1.0",
			ConnectTimeoutSecs: 1,
			RequestTimeoutSecs: 2,
			RobotsTimeoutSecs:  1,
		},
	})

	port := getFreePort(t)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.NewRouter(pipeline, config.ServerConfig{Port: port}),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for the server to come up.
	var ready bool
	for i := 0; i < 20; i++ {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err == nil {
			resp.Body.Close()
			ready = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, ready, "server did not become ready in time")

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])

	// A blocked target travels the whole stack and maps to a 400.
	post, err := http.Post(
		fmt.Sprintf("http://127.0.0.1:%d/api/scrape", port),
		"application/json",
		strings.NewReader(`{"url": "http://localhost/internal"}`),
	)
	require.NoError(t, err)
	defer post.Body.Close()
	assert.Equal(t, http.StatusBadRequest, post.StatusCode)

	var e map[string]string
	require.NoError(t, json.NewDecoder(post.Body).Decode(&e))
	assert.Equal(t, "Local targets are not allowed.", e["error"])

	require.NoError(t, srv.Shutdown(context.Background()))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestServeCmd_Metadata(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.NotEmpty(t, serveCmd.Short)
}

func TestScrapeCmd_Metadata(t *testing.T) {
	assert.Equal(t, "scrape", scrapeCmd.Use)
	assert.NotEmpty(t, scrapeCmd.Short)
}
