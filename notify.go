package main

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// PostRunSummary posts the end-of-run counters to the configured Slack
// channel. Notification is best-effort: failures are logged and never
// affect the run outcome.
func PostRunSummary(api *slack.Client, channelID string, stats RunStats) {
	if api == nil || channelID == "" {
		return
	}
	msg := fmt.Sprintf("Classification run complete (%d customers): %s", stats.Total(), stats.Summary())
	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Printf("run summary post error: %v", err)
		return
	}
	log.Printf("run summary posted to %s", channelID)
}
