package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/blinkyapp/blinky-server/internal/screentime"
	"gorm.io/gorm"
)

const reminderSystemPrompt = `You are a witty, highly aggressive notification bot similar to Duolingo's owl. Your job is to remind students about their assignments in a fun, motivating, but slightly guilt-inducing way. Keep it short (max 2 sentences), funny, and personalized. Be creative and vary your approach - sometimes encouraging, very playfully threatening, sometimes disappointed. Make it feel personal and urgent but lighthearted. If you know what apps they've been using, call them out on it (e.g., "stop wasting time on TikTok, you have an assignment due!"). The messages should be vaguely threatening and short. Do not call them by their name or by [Student Name] or anything similar to that.`

const insightsSystemPrompt = `You are a witty and slightly aggressive academic coach. Your job is to give students a reality check about their procrastination. Be direct, slightly guilt-inducing, but funny and motivating. Keep it to 1-2 sentences max. The tone should be like a concerned friend who's a bit sarcastic.`

var reminderFallbacks = []string{
	"Your assignments are piling up... just saying 👀",
	"I'm not mad, just disappointed you haven't checked your assignments yet 📚",
	"Those assignments aren't going to complete themselves... unfortunately 🎓",
	"Me: Hey, check your assignments!\nYou: *ignores*\nMe: 😢",
	"Stop scrolling and get back to work! 📱➡️📚",
}

var insightsFallbacks = []string{
	"You've spent %d%% of your day on social media... maybe it's time to focus on those assignments? 📚",
	"Social media: %d%% of your day. Assignments: Still waiting for you. The math checks out. 📱➡️📚",
	"%d%% on TikTok/Instagram? Buddy, those assignments aren't going to do themselves! ⏰",
}

// ReminderMessage composes the push body for a reminder. The assignment list
// always feeds the prompt; the latest screen-time snapshot enriches it when
// available (a snapshot fetch failure only drops the enrichment). Never
// returns an empty string: any completion failure falls back to a canned
// template.
func ReminderMessage(ctx context.Context, db *gorm.DB, client *Client, email string, assignments []models.Assignment) string {
	var lines []string
	for _, a := range assignments {
		lines = append(lines, fmt.Sprintf("- %s (%s) due %s %s",
			deref(a.Title), deref(a.Course), deref(a.Date), deref(a.Time)))
	}
	assignmentContext := strings.Join(lines, "\n")

	screentimeContext := ""
	latest, err := screentime.Latest(db, email)
	if err != nil {
		slog.Error("Failed to fetch screentime context", "email", email, "error", err)
	} else if latest != nil {
		if usage, err := screentime.ParseUsage(latest); err == nil && len(usage) > 0 {
			topApps := formatApps(usage, 3)
			screentimeContext = fmt.Sprintf(
				"\n\nThe student's top apps today: %s. Consider mentioning these in a cheeky way to guilt them about procrastinating!",
				topApps,
			)
		}
	}

	userPrompt := fmt.Sprintf(
		"Generate a short notification message for a student with these upcoming assignments:\n%s%s",
		assignmentContext, screentimeContext,
	)

	message, err := client.Complete(ctx, reminderSystemPrompt, userPrompt, 1.0, 100)
	if err != nil {
		slog.Error("Failed to generate reminder, using fallback", "email", email, "error", err)
		return reminderFallbacks[rand.Intn(len(reminderFallbacks))]
	}
	return message
}

// InsightsMessage composes the reality-check line for the insights screen.
// Never returns an empty string.
func InsightsMessage(ctx context.Context, client *Client, assignments []models.Assignment, usage []models.AppUsage, percentage int) string {
	appsList := formatApps(usage, len(usage))

	var lines []string
	for _, a := range assignments {
		lines = append(lines, fmt.Sprintf("- %s (%s) due %s",
			deref(a.Title), deref(a.Course), deref(a.Date)))
	}
	assignmentsList := strings.Join(lines, "\n")
	if assignmentsList == "" {
		assignmentsList = "No specific assignments yet"
	}

	userPrompt := fmt.Sprintf(
		"This student has spent %d%% of their day on social media apps: %s. They have these assignments due soon:\n%s\n\nGive them a reality check about how their day is going.",
		percentage, appsList, assignmentsList,
	)

	message, err := client.Complete(ctx, insightsSystemPrompt, userPrompt, 0.9, 80)
	if err != nil {
		slog.Error("Failed to generate insights message, using fallback", "error", err)
		return fmt.Sprintf(insightsFallbacks[rand.Intn(len(insightsFallbacks))], percentage)
	}
	return message
}

func formatApps(usage []models.AppUsage, limit int) string {
	if limit > len(usage) {
		limit = len(usage)
	}
	parts := make([]string, 0, limit)
	for _, app := range usage[:limit] {
		parts = append(parts, fmt.Sprintf("%s (%dm)", app.AppName, app.UsageMinutes))
	}
	return strings.Join(parts, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
