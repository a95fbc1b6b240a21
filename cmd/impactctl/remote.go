package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpserver "github.com/fyrsmithlabs/impactd/internal/http"
)

func newSendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send <command text>",
		Short: "Send one command to a running impactd",
		Long: `Post one message to the impactd webhook and print the reply.

Examples:
  impactctl send /list
  impactctl send --chat 42 --server http://127.0.0.1:9090 "/assign 1, P. Petrov"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqJSON, err := json.Marshal(httpserver.MessageRequest{
				ChatID: opts.chatID,
				Text:   strings.Join(args, " "),
			})
			if err != nil {
				return fmt.Errorf("failed to marshal request: %w", err)
			}

			url := fmt.Sprintf("%s/api/v1/messages", strings.TrimSuffix(opts.serverURL, "/"))
			httpReq, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(reqJSON))
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			httpReq.Header.Set("Content-Type", "application/json")

			client := &http.Client{Timeout: 30 * time.Second}
			resp, err := client.Do(httpReq)
			if err != nil {
				return fmt.Errorf("failed to send request to %s: %w", url, err)
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
			case http.StatusNoContent:
				fmt.Fprintln(cmd.ErrOrStderr(), "[impactctl] not a command, no reply")
				return nil
			default:
				return statusError(resp)
			}

			var msgResp httpserver.MessageResponse
			if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msgResp.Reply)
			return nil
		},
	}
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check impactd server health",
		Long: `Check the health status of the impactd HTTP server.

Examples:
  impactctl health
  impactctl health --server http://127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/health", strings.TrimSuffix(opts.serverURL, "/"))

			client := &http.Client{Timeout: 5 * time.Second}
			httpReq, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			resp, err := client.Do(httpReq)
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", url, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return statusError(resp)
			}

			var healthResp httpserver.HealthResponse
			if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server Status: %s\n", healthResp.Status)
			fmt.Fprintf(out, "Projects: %d\n", healthResp.Projects)
			fmt.Fprintf(out, "Server URL: %s\n", opts.serverURL)
			return nil
		},
	}
}

func statusError(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
	}
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
