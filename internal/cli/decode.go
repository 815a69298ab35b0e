package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/logic/ixparser/serumdex"
	"serum-indexer-sol/internal/types"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
)

type decodeOptions struct {
	encoding string // auto | hex | base58
	accounts string
	id       string
}

// NewDecodeCommand 解码一条指令数据并输出投影后的 Record
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &decodeOptions{}

	cmd := &cobra.Command{
		Use:   "decode <data>",
		Short: "Decode instruction data into a record",
		Long: `Decode raw market instruction data (hex or base58) and print the record
that would be written to the sink. Accounts are matched by position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.encoding, "encoding", "auto", "input encoding (auto|hex|base58)")
	cmd.Flags().StringVar(&opts.accounts, "accounts", "", "comma separated base58 account keys, in instruction order")
	cmd.Flags().StringVar(&opts.id, "id", "", "record id (random when empty)")
	return cmd
}

func runDecode(rootOpts *RootOptions, opts *decodeOptions, input string, w io.Writer) error {
	data, err := parseData(input, opts.encoding)
	if err != nil {
		return err
	}
	accounts, err := parseAccounts(opts.accounts)
	if err != nil {
		return err
	}

	ix, err := serumdex.DecodeDetailed(data)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	id := opts.id
	if id == "" {
		id = serumdex.NewRecordID()
	}
	rec := serumdex.Project(ix, accounts, id)

	if rootOpts.Format == "json" {
		return writeJSON(w, rec)
	}
	return writeText(w, rec)
}

// parseData auto 模式下先尝试 hex（可带 0x 前缀），失败再按 base58 解析
func parseData(input, encoding string) ([]byte, error) {
	input = strings.TrimSpace(input)
	switch encoding {
	case "hex":
		return decodeHex(input)
	case "base58":
		return decodeBase58(input)
	case "auto":
		if data, err := decodeHex(input); err == nil {
			return data, nil
		}
		return decodeBase58(input)
	default:
		return nil, fmt.Errorf("invalid encoding %q", encoding)
	}
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	return data, nil
}

func decodeBase58(s string) ([]byte, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 data: %w", err)
	}
	return data, nil
}

func parseAccounts(list string) ([]types.Pubkey, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	out := make([]types.Pubkey, 0, len(parts))
	for i, p := range parts {
		key, err := types.TryPubkeyFromBase58(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("account #%d: %w", i, err)
		}
		out = append(out, key)
	}
	return out, nil
}

func writeText(w io.Writer, rec *entity.Record) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "entity_type=%s\n", rec.EntityType)
	for _, k := range rec.Keys() {
		v, _ := rec.Get(k)
		s := v.String()
		if s == "" {
			s = `""`
		}
		fmt.Fprintf(&sb, "%s=%s\n", k, s)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type recordOutput struct {
	EntityType string            `json:"entity_type"`
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes"`
}

func writeJSON(w io.Writer, rec *entity.Record) error {
	out := recordOutput{
		EntityType: rec.EntityType,
		ID:         rec.ID,
		Attributes: make(map[string]string, len(rec.Attributes)),
	}
	for k, v := range rec.Attributes {
		out.Attributes[k] = v.String()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
