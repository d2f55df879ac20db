package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// QueryRequest represents the query API request.
type QueryRequest struct {
	Query         string `json:"query"`
	K             int    `json:"k,omitempty"`
	CandidatePool int    `json:"candidate_pool,omitempty"`
	MeetingID     string `json:"meeting_id,omitempty"`
}

// QueryMatch represents a single search match.
type QueryMatch struct {
	MeetingID string  `json:"meeting_id"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

// QueryAPIResponse represents the query API response.
type QueryAPIResponse struct {
	Matches []QueryMatch `json:"matches"`
}

// QueryCmd creates the query command.
func QueryCmd() *cobra.Command {
	var (
		k         int
		pool      int
		meetingID string
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search stored meetings",
		Long:  "Searches stored meeting chunks by semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runQuery(args[0], k, pool, meetingID, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&k, "limit", "n", 0, "Maximum number of matches (default 5)")
	cmd.Flags().IntVar(&pool, "pool", 0, "Candidate pool size (default 1000)")
	cmd.Flags().StringVarP(&meetingID, "meeting", "m", "", "Restrict search to one meeting")

	return cmd
}

func runQuery(query string, k, pool int, meetingID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := QueryRequest{
		Query:         query,
		K:             k,
		CandidatePool: pool,
		MeetingID:     meetingID,
	}

	resp, err := api.Post("/query", req)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var queryResp QueryAPIResponse
	if err := json.Unmarshal(resp.Data, &queryResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(queryResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(queryResp.Matches) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	fmt.Printf("Found %d matches:\n\n", len(queryResp.Matches))
	for i, match := range queryResp.Matches {
		fmt.Printf("%d. [%.3f] %s\n", i+1, match.Score, match.MeetingID)
		fmt.Printf("   %s\n", match.Text)
		if i < len(queryResp.Matches)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
