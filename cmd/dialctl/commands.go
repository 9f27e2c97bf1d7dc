package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/internal/phone"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type rootOptions struct {
	server  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "dialctl",
		Short:         "Operator tool for the outbound caller",
		SilenceUsage:  true,
	}

	server := os.Getenv("DIALCTL_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "base URL of the running server (env DIALCTL_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 90*time.Second, "request timeout")

	rootCmd.AddCommand(
		newNormalizeCmd(),
		newCallCmd(opts),
		newSMSCmd(opts),
		newHealthCmd(opts),
	)
	return rootCmd
}

// newNormalizeCmd shows how phone numbers will be dialed and tagged. It does
// not talk to the server.
func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <phone>...",
		Short: "Show the dialable form and CRM key of phone numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, raw := range args {
				n := phone.Normalize(raw)
				dialable := n.Dialable
				if !n.Valid {
					dialable = "(not dialable)"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", raw, dialable, n.TaggingKey)
			}
			return nil
		},
	}
}

func newCallCmd(opts *rootOptions) *cobra.Command {
	var name, number, userType string

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Place an outbound call to a lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(number) == "" || strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name and --phone are required")
			}
			if n := phone.Normalize(number); !n.Valid {
				return fmt.Errorf("%w: %q", domain.ErrInvalidRecipient, number)
			}

			resp, err := newClient(opts).post("/initiate-call", map[string]string{
				"clientName":  name,
				"phoneNumber": number,
				"userType":    userType,
			})
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "lead display name")
	cmd.Flags().StringVar(&number, "phone", "", "lead phone number")
	cmd.Flags().StringVar(&userType, "user-type", domain.DefaultUserType, "VIP or non-VIP")
	return cmd
}

func newSMSCmd(opts *rootOptions) *cobra.Command {
	var number, message string

	cmd := &cobra.Command{
		Use:   "sms",
		Short: "Send a text message",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(number) == "" || strings.TrimSpace(message) == "" {
				return fmt.Errorf("--phone and --message are required")
			}

			resp, err := newClient(opts).post("/send-sms", map[string]string{
				"phoneNumber": number,
				"message":     message,
			})
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&number, "phone", "", "recipient phone number")
	cmd.Flags().StringVar(&message, "message", "", "message body")
	return cmd
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient(opts).get("/health")
			if err != nil {
				return err
			}
			if resp.status != http.StatusOK {
				return fmt.Errorf("server unhealthy: status %d: %s", resp.status, resp.body)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

// printResponse prints the JSON body indented and fails when the server
// reported an error
func printResponse(out io.Writer, resp *response) error {
	var body map[string]interface{}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return fmt.Errorf("unexpected response (status %d): %s", resp.status, resp.body)
	}

	pretty, _ := json.MarshalIndent(body, "", "  ")
	fmt.Fprintln(out, string(pretty))

	if success, _ := body["success"].(bool); !success {
		return fmt.Errorf("request failed with status %d", resp.status)
	}
	return nil
}
