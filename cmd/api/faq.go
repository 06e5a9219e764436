package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	model "github.com/einfratech/chatwidget/backend/internal/model/widget"
	"github.com/einfratech/chatwidget/backend/internal/service/widget"
)

func newFAQCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "faq",
		Short: "Print the FAQ table in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for i, entry := range a.catalog.FAQ.Entries() {
				if _, err := fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, entry.Question, entry.Answer); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Submit a question to a fresh widget and print the transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := widget.New("cli", widget.Options{Catalog: a.catalog, Logger: a.log})
			defer w.Shutdown()

			w.SubmitMessage(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			for _, msg := range w.Messages() {
				if _, err := fmt.Fprintf(out, "%d [%s] %s\n", msg.ID, senderLabel(msg), msg.Text); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func senderLabel(msg model.Message) string {
	if msg.IsBot() {
		return "bot"
	}
	return "you"
}
