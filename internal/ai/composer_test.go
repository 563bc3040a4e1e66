package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/blinkyapp/blinky-server/internal/screentime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.Screentime{},
	))
	return db
}

func strPtr(s string) *string { return &s }

func completionServer(t *testing.T, content string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
}

func sampleAssignments() []models.Assignment {
	return []models.Assignment{
		{Title: strPtr("Essay"), Course: strPtr("ENG101"), Date: strPtr("Oct 21"), Time: strPtr("11:59 PM")},
	}
}

func TestCompleteTrimsContent(t *testing.T) {
	server := completionServer(t, "  Do your work!  ", nil)
	defer server.Close()

	client := NewClient(server.URL, "sk-test", "gpt-4o", false)
	content, err := client.Complete(context.Background(), "system", "user", 1.0, 100)
	require.NoError(t, err)
	assert.Equal(t, "Do your work!", content)
}

func TestCompleteEmptyContentIsError(t *testing.T) {
	server := completionServer(t, "   ", nil)
	defer server.Close()

	client := NewClient(server.URL, "sk-test", "gpt-4o", false)
	_, err := client.Complete(context.Background(), "system", "user", 1.0, 100)
	assert.Error(t, err)
}

func TestCompleteStubMode(t *testing.T) {
	client := NewClient("http://unused.invalid", "", "gpt-4o", true)
	content, err := client.Complete(context.Background(), "system", "user", 1.0, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}

func TestReminderMessageUsesCompletion(t *testing.T) {
	db := setupTestDB(t)
	var captured chatRequest
	server := completionServer(t, "Get back to that essay!", &captured)
	defer server.Close()

	client := NewClient(server.URL, "sk-test", "gpt-4o", false)
	message := ReminderMessage(context.Background(), db, client, "a@x.com", sampleAssignments())

	assert.Equal(t, "Get back to that essay!", message)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[1].Content, "Essay (ENG101) due Oct 21 11:59 PM")
	assert.Equal(t, 1.0, captured.Temperature)
	assert.Equal(t, 100, captured.MaxTokens)
}

func TestReminderMessageEnrichedWithScreentime(t *testing.T) {
	db := setupTestDB(t)
	_, err := screentime.Append(db, "a@x.com", []models.AppUsage{
		{AppName: "TikTok", UsageMinutes: 120},
		{AppName: "Instagram", UsageMinutes: 60},
		{AppName: "YouTube", UsageMinutes: 30},
		{AppName: "Maps", UsageMinutes: 5},
	}, "")
	require.NoError(t, err)

	var captured chatRequest
	server := completionServer(t, "Put the phone down.", &captured)
	defer server.Close()

	client := NewClient(server.URL, "sk-test", "gpt-4o", false)
	ReminderMessage(context.Background(), db, client, "a@x.com", sampleAssignments())

	require.Len(t, captured.Messages, 2)
	userPrompt := captured.Messages[1].Content
	assert.Contains(t, userPrompt, "TikTok (120m)")
	assert.Contains(t, userPrompt, "Instagram (60m)")
	assert.Contains(t, userPrompt, "YouTube (30m)")
	// Only the top 3 apps feed the prompt
	assert.NotContains(t, userPrompt, "Maps")
}

func TestReminderMessageFallbackNeverEmpty(t *testing.T) {
	db := setupTestDB(t)
	server := failingServer(t)
	defer server.Close()

	client := NewClient(server.URL, "sk-test", "gpt-4o", false)
	message := ReminderMessage(context.Background(), db, client, "a@x.com", sampleAssignments())

	assert.NotEmpty(t, message)
	assert.Contains(t, reminderFallbacks, message)
}

func TestInsightsMessageFallbackIncludesPercentage(t *testing.T) {
	server := failingServer(t)
	defer server.Close()

	client := NewClient(server.URL, "sk-test", "gpt-4o", false)
	message := InsightsMessage(context.Background(), client, nil, []models.AppUsage{{AppName: "TikTok", UsageMinutes: 100}}, 42)

	assert.NotEmpty(t, message)
	assert.Contains(t, message, "42")
}

func TestGetInsightsNoData(t *testing.T) {
	db := setupTestDB(t)
	client := NewClient("http://unused.invalid", "", "gpt-4o", true)

	report, err := GetInsights(context.Background(), db, client, "a@x.com")
	require.NoError(t, err)
	assert.False(t, report.HasSocialMediaData)
	assert.Equal(t, "Start tracking your screen time to get personalized insights!", report.Message)
	assert.NotNil(t, report.Assignments)
	assert.Nil(t, report.SocialMediaPercentage)
}

func TestGetInsightsWithData(t *testing.T) {
	db := setupTestDB(t)
	_, err := screentime.Append(db, "a@x.com", []models.AppUsage{
		{AppName: "TikTok", UsageMinutes: 400},
		{AppName: "Instagram", UsageMinutes: 200},
		{AppName: "YouTube", UsageMinutes: 100},
		{AppName: "Maps", UsageMinutes: 20},
	}, "")
	require.NoError(t, err)

	client := NewClient("http://unused.invalid", "", "gpt-4o", true)
	report, err := GetInsights(context.Background(), db, client, "a@x.com")
	require.NoError(t, err)

	assert.True(t, report.HasSocialMediaData)
	require.NotNil(t, report.SocialMediaPercentage)
	// 720 of 1440 minutes
	assert.Equal(t, 50, *report.SocialMediaPercentage)
	require.NotNil(t, report.TotalScreenTimeMinutes)
	assert.Equal(t, 720, *report.TotalScreenTimeMinutes)
	assert.Len(t, report.TopApps, 3)
	assert.NotEmpty(t, report.Message)
}
