package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions 全局参数
type RootOptions struct {
	Format string // text | json
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand 创建 serumctl 根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "serumctl",
		Short: "Serum DEX instruction inspection tool",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewTagsCommand(opts))
	return cmd
}
