package cli

import (
	"fmt"
	"io"
	"strings"

	"ecommerce-storefront/storefront/internal/assistant"

	"github.com/spf13/cobra"
)

func printChats(out io.Writer, chats []assistant.Chat) {
	table(out, "ID\tTITLE\tMESSAGES", func(w io.Writer) {
		for _, c := range chats {
			fmt.Fprintf(w, "%s\t%s\t%d\n", c.ID, assistant.ShortTitle(c.Title), len(c.Messages))
		}
	})
}

func printChat(out io.Writer, c assistant.Chat) {
	fmt.Fprintf(out, "%s (%s)\n", c.Title, c.ID)
	for _, m := range c.Messages {
		fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04"), m.From, m.Text)
	}
}

func chatCommand(rt *runtime) *cobra.Command {
	listChats := func(cmd *cobra.Command, args []string) error {
		chats, err := rt.state.ChatHistory(cmd.Context())
		if err != nil {
			return err
		}
		printChats(rt.out, chats)
		return nil
	}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the shopping assistant",
		Args:  cobra.NoArgs,
		RunE:  listChats,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List chats, newest first",
		Args:  cobra.NoArgs,
		RunE:  listChats,
	}

	newChat := &cobra.Command{
		Use:   "new [title]",
		Short: "Start a chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := rt.state.NewChat(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.out, chat.ID)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Print a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := rt.state.Chat(args[0])
			if err != nil {
				return err
			}
			printChat(rt.out, chat)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.state.DeleteChat(cmd.Context(), args[0])
		},
	}

	var chatID string
	ask := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := rt.state.Ask(cmd.Context(), chatID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.out, chat.Messages[len(chat.Messages)-1].Text)
			return nil
		},
	}
	ask.Flags().StringVar(&chatID, "chat", "", "chat to continue (default: the newest)")

	cmd.AddCommand(list, newChat, show, del, ask)
	return cmd
}
