package cli

import (
	"fmt"

	"github.com/harun/chatclone/internal/tui"
	"github.com/harun/chatclone/pkg/session"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Chat with a model in a full-screen interface",
	Long: `Start a full-screen chat interface.
Enter sends a message, /clear forgets the conversation, Ctrl-C cancels a
streaming reply and Esc or a second Ctrl-C quits.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.close()

	manager := session.NewManager(session.ManagerConfig{Logger: rt.zlog()})
	store := manager.Create()
	defer manager.End(store.ID())

	renderer := tui.NewProgramRenderer()
	conv := rt.newConversation(store, renderer)

	title := fmt.Sprintf("chatclone · %s", rt.live.Get().Chat.Model)
	return tui.Run(cmd.Context(), renderer, conv, title)
}
