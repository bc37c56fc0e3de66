package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/harun/chatclone/internal/terminal"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a model in the terminal",
	Long: `Start an interactive chat session in the terminal.
Type a message and press enter; the reply streams in as it is generated.

Commands:
  /clear     forget the conversation so far
  /history   print the stored conversation
  /exit      leave (also /quit or end of input)

Ctrl-C while a reply is streaming cancels that reply.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.close()

	manager := session.NewManager(session.ManagerConfig{Logger: rt.zlog()})
	store := manager.Create()
	defer manager.End(store.ID())

	out := cmd.OutOrStdout()
	renderer := terminal.NewRenderer(out, terminal.Options{})
	conv := rt.newConversation(store, renderer)

	cfg := rt.live.Get()
	renderer.Info("chatclone %s, model %s. Type /exit to quit.", GetVersion(), cfg.Chat.Model)

	return repl(cmd.Context(), cmd.InOrStdin(), out, conv, renderer, interruptContext)
}

// replConversation is the part of a conversation the REPL drives
type replConversation interface {
	Send(ctx context.Context, input string) (conversation.Reply, error)
	Clear()
	History() []session.Turn
}

// exchangeContext returns the context one exchange runs under
type exchangeContext func(parent context.Context) (context.Context, context.CancelFunc)

// interruptContext cancels the exchange on Ctrl-C. Outside an exchange the
// default signal behaviour applies.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// repl reads lines from in until /exit or end of input. Each line runs to
// completion before the next is read.
func repl(ctx context.Context, in io.Reader, out io.Writer, conv replConversation, renderer *terminal.Renderer, newCtx exchangeContext) error {
	if ctx == nil {
		ctx = context.Background()
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/clear":
			conv.Clear()
			renderer.Info("Conversation cleared.")
			continue
		case "/history":
			renderer.History(conv.History())
			continue
		}

		// failures are already reported through the renderer
		exCtx, cancel := newCtx(ctx)
		_, _ = conv.Send(exCtx, line)
		cancel()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
