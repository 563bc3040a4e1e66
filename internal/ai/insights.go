package ai

import (
	"context"
	"math"

	"github.com/blinkyapp/blinky-server/internal/assignments"
	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/blinkyapp/blinky-server/internal/screentime"
	"gorm.io/gorm"
)

// minutesPerDay is the denominator for the social-media percentage
const minutesPerDay = 24 * 60

// Insights is the response body of the insights endpoint
type Insights struct {
	HasSocialMediaData     bool                `json:"hasSocialMediaData"`
	SocialMediaPercentage  *int                `json:"socialMediaPercentage,omitempty"`
	TotalScreenTimeMinutes *int                `json:"totalScreenTimeMinutes,omitempty"`
	TopApps                []models.AppUsage   `json:"topApps,omitempty"`
	Message                string              `json:"message"`
	Assignments            []models.Assignment `json:"assignments"`
}

// GetInsights builds the procrastination report for email. Without any
// screen-time snapshot it returns a generic prompt to start tracking and
// makes no completion call.
func GetInsights(ctx context.Context, db *gorm.DB, client *Client, email string) (*Insights, error) {
	latest, err := screentime.Latest(db, email)
	if err != nil {
		return nil, err
	}

	assignmentList, err := assignments.ListByEmail(db, email)
	if err != nil {
		return nil, err
	}
	if assignmentList == nil {
		assignmentList = []models.Assignment{}
	}

	if latest == nil {
		return &Insights{
			HasSocialMediaData: false,
			Message:            "Start tracking your screen time to get personalized insights!",
			Assignments:        assignmentList,
		}, nil
	}

	usage, err := screentime.ParseUsage(latest)
	if err != nil {
		return nil, err
	}

	percentage := int(math.Round(float64(latest.TotalUsageMinutes) / minutesPerDay * 100))
	message := InsightsMessage(ctx, client, assignmentList, usage, percentage)

	topApps := usage
	if len(topApps) > 3 {
		topApps = topApps[:3]
	}

	total := latest.TotalUsageMinutes
	return &Insights{
		HasSocialMediaData:     true,
		SocialMediaPercentage:  &percentage,
		TotalScreenTimeMinutes: &total,
		TopApps:                topApps,
		Message:                message,
		Assignments:            assignmentList,
	}, nil
}
