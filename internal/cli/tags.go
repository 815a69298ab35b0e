package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"serum-indexer-sol/internal/logic/ixparser/serumdex"

	"github.com/spf13/cobra"
)

// NewTagsCommand 列出全部指令类型、payload 长度与账户角色
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List known instruction tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTags(rootOpts, cmd.OutOrStdout())
		},
	}
}

type tagOutput struct {
	Tag      uint32   `json:"tag"`
	Name     string   `json:"name"`
	Payload  int      `json:"payload"`
	Accounts []string `json:"accounts"`
}

func runTags(rootOpts *RootOptions, w io.Writer) error {
	tags := serumdex.Tags()
	if rootOpts.Format == "json" {
		out := make([]tagOutput, 0, len(tags))
		for _, t := range tags {
			roles := serumdex.AccountRoles(t)
			if roles == nil {
				roles = []string{}
			}
			out = append(out, tagOutput{Tag: uint32(t), Name: t.String(), Payload: t.PayloadSize(), Accounts: roles})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, t := range tags {
		if _, err := fmt.Fprintf(w, "%2d %-26s payload=%-3d accounts=%d\n",
			uint32(t), t.String(), t.PayloadSize(), len(serumdex.AccountRoles(t))); err != nil {
			return err
		}
	}
	return nil
}
