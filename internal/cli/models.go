package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/harun/chatclone/internal/config"
	"github.com/harun/chatclone/pkg/assembler"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported models",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	current := assembler.DefaultModel
	if cfg, err := config.Load(cfgFile); err == nil {
		current = cfg.Chat.Model
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tPROVIDER\t")
	for _, m := range assembler.SupportedModels() {
		marker := ""
		if m.ID == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Provider, marker)
	}
	return w.Flush()
}
