package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/blinkyapp/blinky-server/internal/push"
	"github.com/blinkyapp/blinky-server/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func strPtr(s string) *string { return &s }

// gatewayServer echoes one ok ticket per submitted message and records the
// recipient tokens.
func gatewayServer(t *testing.T, sent *[][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var messages []push.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&messages))
		tokens := make([]string, 0, len(messages))
		tickets := make([]push.Ticket, 0, len(messages))
		for _, m := range messages {
			tokens = append(tokens, m.To)
			tickets = append(tickets, push.Ticket{Status: "ok", ID: m.To})
		}
		*sent = append(*sent, tokens)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": tickets})
	}))
}

func TestSendBroadcastSkipsMalformedToken(t *testing.T) {
	db := setupTestDB(t)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		require.NoError(t, users.Ensure(db, email, strPtr("ExponentPushToken["+email+"]")))
	}
	// One registered token that is not a valid gateway address
	require.NoError(t, users.Ensure(db, "bad@x.com", strPtr("not-a-token")))

	var sent [][]string
	server := gatewayServer(t, &sent)
	defer server.Close()

	result, err := Send(context.Background(), db, push.NewClient(server.URL), Input{
		Title: "Hello",
		Body:  "World",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Count)
	assert.Len(t, result.Tickets, 4)
	require.Len(t, sent, 1)
	assert.NotContains(t, sent[0], "not-a-token")
}

func TestSendNoTokens(t *testing.T) {
	db := setupTestDB(t)
	// A user without a token is not a target
	require.NoError(t, users.Ensure(db, "quiet@x.com", nil))

	_, err := Send(context.Background(), db, push.NewClient("http://unused.invalid"), Input{
		Title: "Hello",
		Body:  "World",
	})
	assert.ErrorIs(t, err, ErrNoTokens)
}

func TestSendTargetsSingleEmail(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, users.Ensure(db, "a@x.com", strPtr("ExponentPushToken[aaa]")))
	require.NoError(t, users.Ensure(db, "b@x.com", strPtr("ExponentPushToken[bbb]")))

	var sent [][]string
	server := gatewayServer(t, &sent)
	defer server.Close()

	result, err := Send(context.Background(), db, push.NewClient(server.URL), Input{
		Title: "Hello",
		Body:  "World",
		Email: strPtr("b@x.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ExponentPushToken[bbb]"}, sent[0])
}

func TestSendUnknownEmail(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, users.Ensure(db, "a@x.com", strPtr("ExponentPushToken[aaa]")))

	_, err := Send(context.Background(), db, push.NewClient("http://unused.invalid"), Input{
		Title: "Hello",
		Body:  "World",
		Email: strPtr("ghost@x.com"),
	})
	assert.ErrorIs(t, err, ErrNoTokens)
}
