package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteResponse represents the delete API response.
type DeleteResponse struct {
	MeetingID string `json:"meeting_id"`
	Deleted   int    `json:"deleted"`
}

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <meeting-id>",
		Short: "Delete a meeting's chunks",
		Long:  "Removes every stored chunk belonging to the meeting.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDelete(args[0], outputJSON)
		},
	}

	return cmd
}

func runDelete(meetingID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Delete("/meetings/" + meetingID)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	var deleteResp DeleteResponse
	if err := json.Unmarshal(resp.Data, &deleteResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(deleteResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Deleted %d chunks for meeting %s\n", deleteResp.Deleted, deleteResp.MeetingID)
	return nil
}
