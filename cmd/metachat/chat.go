package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fwojciec/metachat"
)

func newChatCmd(opts *options) *cobra.Command {
	var (
		sessionID  string
		showAdvice bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start or resume an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.cleanup()

			if sessionID == "" {
				sessionID = uuid.NewString()
				fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n", sessionID)
			}

			labels := metachat.RoleLabels{User: opts.userLabel, Assistant: opts.assistantLabel}
			pair := metachat.PromptPair{Meta: opts.metaPrompt, Enhanced: opts.enhancedPrompt}
			_, err = app.orch.CreateSession(ctx, sessionID, labels, pair)
			switch {
			case err == nil:
			case errors.Is(err, metachat.ErrAlreadyExists):
				// Resuming an existing session.
			default:
				return err
			}

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}
				res, err := app.orch.HandleMessage(ctx, sessionID, line)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					app.logger.Error("pipeline run failed",
						zap.String("session_id", sessionID),
						zap.Error(err))
					fmt.Fprintf(out, "failed to respond: %v\n", err)
					continue
				}
				if showAdvice {
					fmt.Fprintf(out, "[advice] %s\n", res.Advice)
				}
				fmt.Fprintf(out, "%s\n", res.Reply)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to resume (generated when omitted)")
	cmd.Flags().BoolVar(&showAdvice, "show-advice", false, "Print the meta pass advice alongside each reply")
	return cmd
}
