package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// MeetingSummary represents one meeting in the list response.
type MeetingSummary struct {
	MeetingID      string `json:"meeting_id"`
	ChunkCount     int    `json:"chunk_count"`
	Topic          string `json:"topic,omitempty"`
	Department     string `json:"department,omitempty"`
	MostRecentDate string `json:"most_recent_date"`
}

// MeetingListResponse represents the meetings API response.
type MeetingListResponse struct {
	TotalChunks int              `json:"total_chunks"`
	Meetings    []MeetingSummary `json:"meetings"`
}

// MeetingsCmd creates the meetings command.
func MeetingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "List stored meetings",
		Long:  "Lists every stored meeting with chunk counts, ordered by recency.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runMeetings(outputJSON)
		},
	}

	return cmd
}

func runMeetings(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/meetings")
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp MeetingListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Meetings) == 0 {
		fmt.Println("No meetings stored.")
		return nil
	}

	fmt.Printf("%d meetings, %d chunks total:\n\n", len(listResp.Meetings), listResp.TotalChunks)
	for _, m := range listResp.Meetings {
		fmt.Printf("  %s (%d chunks)\n", m.MeetingID, m.ChunkCount)
		if m.Topic != "" {
			fmt.Printf("    Topic: %s\n", m.Topic)
		}
		if m.Department != "" {
			fmt.Printf("    Department: %s\n", m.Department)
		}
		fmt.Printf("    Last ingested: %s\n", m.MostRecentDate)
	}

	return nil
}
