package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tOgg1/canplay/internal/capture"
	"github.com/tOgg1/canplay/internal/catalog"
	"github.com/tOgg1/canplay/internal/filter"
	"github.com/tOgg1/canplay/internal/models"
)

var (
	framesFilter      string
	framesLimit       int
	framesDefinitions string
)

func init() {
	rootCmd.AddCommand(framesCmd)
	framesCmd.Flags().StringVar(&framesFilter, "filter", "", "only list frames whose ID contains this text")
	framesCmd.Flags().IntVar(&framesLimit, "limit", 0, "maximum number of frames to list (0 = all)")
	framesCmd.Flags().StringVar(&framesDefinitions, "dbc", "", "DBC file with message names")
}

var framesCmd = &cobra.Command{
	Use:   "frames <capture>",
	Short: "List the frames of a capture",
	Long:  "Ingest a capture and print its frames as a table, without replaying it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFrames(cmd.OutOrStdout(), args[0], framesDefinitions, framesFilter, framesLimit)
	},
}

func runFrames(out io.Writer, path, definitions, query string, limit int) error {
	seq, err := capture.LoadFile(path)
	if err != nil {
		return err
	}

	var names *catalog.Catalog
	if definitions != "" {
		names, _, err = catalog.ParseFile(definitions)
		if err != nil && !models.IsKind(err, models.KindDefinitionParseFailure) {
			return err
		}
	}

	table := newFrameTable(names)
	visible := filter.Visibility(seq.Frames, query)
	for i, f := range seq.Frames {
		if !visible[i] {
			continue
		}
		if limit > 0 && table.len() >= limit {
			break
		}
		table.addFrame(f)
	}

	if err := table.render(out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\n%d of %d frames (%s, %d lines skipped)\n", table.len(), seq.Len(), seq.Format, seq.Skipped)
	return err
}

// frameTable lists frames, with a NAME column when a catalog is loaded.
type frameTable struct {
	*textTable
	names *catalog.Catalog
}

func newFrameTable(names *catalog.Catalog) frameTable {
	if names == nil {
		return frameTable{textTable: newTextTable("#", "TIME", "IFACE", "ID", "DATA")}
	}
	return frameTable{
		textTable: newTextTable("#", "TIME", "IFACE", "ID", "NAME", "DATA"),
		names:     names,
	}
}

func (t frameTable) addFrame(f models.Frame) {
	cells := []string{strconv.Itoa(f.Index), f.Timestamp, f.Interface, f.ArbitrationID}
	if t.names != nil {
		name, _ := t.names.LookupHex(f.ArbitrationID)
		cells = append(cells, name)
	}
	t.add(append(cells, f.DataField)...)
}
