package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DocumentURLResponse represents the document API response.
type DocumentURLResponse struct {
	DownloadURL string `json:"download_url"`
}

// DocumentCmd creates the document command.
func DocumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document <meeting-id>",
		Short: "Get the archived source document URL",
		Long:  "Prints a presigned download URL for the meeting's archived source document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocument(args[0], outputJSON)
		},
	}

	return cmd
}

func runDocument(meetingID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/meetings/" + meetingID + "/document")
	if err != nil {
		return fmt.Errorf("document lookup failed: %w", err)
	}

	var docResp DocumentURLResponse
	if err := json.Unmarshal(resp.Data, &docResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(docResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(docResp.DownloadURL)
	return nil
}
