package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSharedClientCarriesTimeout(t *testing.T) {
	assert.Equal(t, completionTimeout, httpClient.Timeout)
	assert.Positive(t, httpClient.Timeout)
}

func TestCompletionTimesOutOnHungUpstream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	original := httpClient.Timeout
	httpClient.Timeout = 100 * time.Millisecond
	defer func() { httpClient.Timeout = original }()

	client := NewOllamaClient(srv.URL, "llama3")

	done := make(chan error, 1)
	go func() {
		// Background context like the scheduler ticks use; the client
		// timeout is the only thing that can unblock this
		_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "oi"}}, 10, 0.1)
		done <- err
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("completion call did not time out")
	}
}
