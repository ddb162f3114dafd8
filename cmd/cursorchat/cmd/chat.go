package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xwartz/cursor-api/pkg/api"
)

var (
	streamFlag bool
	systemFlag string
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a chat message and print the reply",
	Long: `Send a single chat message to the backend and print the assistant's
reply. The message is taken from the arguments, or from stdin when no
arguments are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if prompt == "" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			prompt = strings.TrimSpace(string(data))
		}
		if prompt == "" {
			return fmt.Errorf("no message given")
		}

		var messages []api.ChatMessage
		if systemFlag != "" {
			messages = append(messages, api.ChatMessage{Role: api.RoleSystem, Content: systemFlag})
		}
		messages = append(messages, api.ChatMessage{Role: api.RoleUser, Content: prompt})

		model := cfg.Defaults.Model
		if streamFlag || cfg.Defaults.Stream {
			return runStreaming(cmd, messages, model)
		}
		return runBlocking(cmd, messages, model)
	},
}

// runBlocking performs a non-streaming completion and prints the reply.
func runBlocking(cmd *cobra.Command, messages []api.ChatMessage, model string) error {
	resp, err := sdk.CreateChatCompletion(cmd.Context(), messages, model)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Choices[0].Message.Content)
	return nil
}

// runStreaming prints deltas as they arrive.
func runStreaming(cmd *cobra.Command, messages []api.ChatMessage, model string) error {
	events, err := sdk.CreateChatCompletionStream(cmd.Context(), messages, model)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for ev := range events {
		if ev.Err != nil {
			fmt.Fprintln(out)
			return ev.Err
		}
		choice := ev.Chunk.Choices[0]
		if choice.FinishReason != nil {
			break
		}
		fmt.Fprint(out, choice.Delta.Content)
	}
	fmt.Fprintln(out)
	return nil
}

func init() {
	chatCmd.Flags().BoolVar(&streamFlag, "stream", false, "stream the reply as it is generated")
	chatCmd.Flags().StringVar(&systemFlag, "system", "", "system prompt to prepend")
}
