package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpoPushToken(t *testing.T) {
	valid := []string{
		"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]",
		"ExpoPushToken[abc123]",
	}
	for _, token := range valid {
		assert.True(t, IsExpoPushToken(token), token)
	}

	invalid := []string{
		"",
		"not-a-token",
		"ExponentPushToken[]",
		"ExponentPushToken[abc",
		"FCMToken[abc]",
		"exponentpushtoken[abc]",
	}
	for _, token := range invalid {
		assert.False(t, IsExpoPushToken(token), token)
	}
}

func okTicketResponse(n int) []Ticket {
	tickets := make([]Ticket, n)
	for i := range tickets {
		tickets[i] = Ticket{Status: "ok", ID: "ticket-id"}
	}
	return tickets
}

func TestSendSingleChunk(t *testing.T) {
	var received []Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]interface{}{"data": okTicketResponse(len(received))})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	messages := []Message{
		{To: "ExponentPushToken[a]", Title: "Blinky", Body: "hey"},
		{To: "ExponentPushToken[b]", Title: "Blinky", Body: "hey"},
	}

	tickets, err := client.Send(context.Background(), messages)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
	assert.Equal(t, "ok", tickets[0].Status)
	assert.Len(t, received, 2)
	assert.Equal(t, "ExponentPushToken[a]", received[0].To)
}

func TestSendChunksSequentially(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var batch []Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		assert.LessOrEqual(t, len(batch), ChunkSize)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": okTicketResponse(len(batch))})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	messages := make([]Message, 150)
	for i := range messages {
		messages[i] = Message{To: "ExponentPushToken[x]", Title: "t", Body: "b"}
	}

	tickets, err := client.Send(context.Background(), messages)
	require.NoError(t, err)
	assert.Len(t, tickets, 150)
	assert.Equal(t, int32(2), requests.Load())
}

func TestSendFailedChunkDoesNotAbortRemaining(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		var batch []Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		if n == 1 {
			// First chunk fails at the gateway
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": okTicketResponse(len(batch))})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	messages := make([]Message, 150)
	for i := range messages {
		messages[i] = Message{To: "ExponentPushToken[x]", Title: "t", Body: "b"}
	}

	tickets, err := client.Send(context.Background(), messages)
	require.NoError(t, err)
	require.Len(t, tickets, 150)
	assert.Equal(t, "error", tickets[0].Status)
	assert.Equal(t, "ok", tickets[149].Status)
	assert.Equal(t, int32(2), requests.Load())
}

func TestSendAllChunksFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	tickets, err := client.Send(context.Background(), []Message{
		{To: "ExponentPushToken[x]", Title: "t", Body: "b"},
	})

	assert.Error(t, err)
	assert.Len(t, tickets, 1)
	assert.Equal(t, "error", tickets[0].Status)
}

func TestSendEmpty(t *testing.T) {
	client := NewClient("http://unused.invalid")
	tickets, err := client.Send(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}
