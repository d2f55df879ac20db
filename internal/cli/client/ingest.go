package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// IngestResponse represents the ingest API response.
type IngestResponse struct {
	MeetingID  string `json:"meeting_id"`
	ChunkCount int    `json:"chunk_count"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		meetingID  string
		topic      string
		department string
		replace    bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a meeting document",
		Long:  "Extracts, chunks, embeds, and stores a meeting document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(args[0], meetingID, topic, department, replace, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&meetingID, "meeting", "m", "", "Meeting identifier (required)")
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Meeting topic")
	cmd.Flags().StringVarP(&department, "department", "d", "", "Owning department")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the meeting's existing chunks")
	cmd.MarkFlagRequired("meeting")

	return cmd
}

func runIngest(filePath, meetingID, topic, department string, replace bool, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	fields := map[string]string{
		"meeting_id": meetingID,
		"topic":      topic,
		"department": department,
	}
	if replace {
		fields["replace"] = "true"
	}

	resp, err := api.PostFile("/ingest", filePath, fields)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var ingestResp IngestResponse
	if err := json.Unmarshal(resp.Data, &ingestResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(ingestResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Ingested %s: %d chunks stored\n", ingestResp.MeetingID, ingestResp.ChunkCount)
	return nil
}
