package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/canplay/internal/catalog"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog <dbc>",
	Short: "Print the messages and value tables of a DBC file",
	Long: "Parse a DBC file and print its message catalog and value tables. " +
		"When parsing fails part way, everything read before the failure is printed and the command exits non-zero.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalog(cmd.OutOrStdout(), args[0])
	},
}

func runCatalog(out io.Writer, path string) error {
	names, tables, parseErr := catalog.ParseFile(path)
	if names == nil {
		return parseErr
	}

	table := newTextTable("ID", "NAME", "SIZE", "TX")
	for _, msg := range names.Messages() {
		table.add(
			fmt.Sprintf("0x%X", msg.ID),
			msg.Name,
			strconv.FormatUint(msg.Size, 10),
			formatTransmitter(msg.Transmitter),
		)
	}
	if err := table.render(out); err != nil {
		return err
	}

	for _, name := range tables.Names() {
		entries, _ := tables.Get(name)
		labels := make([]string, 0, len(entries))
		for _, e := range entries {
			labels = append(labels, fmt.Sprintf("%d=%s", e.Value, e.Label))
		}
		if _, err := fmt.Fprintf(out, "\n%s: %s", name, strings.Join(labels, " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(out, "\n%d messages, %d value tables\n", names.Len(), tables.Len()); err != nil {
		return err
	}
	return parseErr
}

func formatTransmitter(ordinal int) string {
	if ordinal < 0 {
		return "-"
	}
	return strconv.Itoa(ordinal)
}
