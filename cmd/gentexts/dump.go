package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/gentexts/pkg/gentexts"
	"pkg.jsn.cam/gentexts/pkg/gentexts/protocol"
)

// Output formats for dump
const (
	dumpFormatText  = "text"
	dumpFormatJSONL = "jsonl"
)

var (
	dumpLists  int64
	dumpOutput string
	dumpFormat string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write many text lists to a file",
	Long: `Generates --lists text lists and writes them to --output, either one text
per line with a blank line between lists (text) or one JSON object per list
(jsonl). Lists that fail to generate are skipped and counted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dumpLists <= 0 {
			return errors.New("--lists must be positive")
		}
		if dumpFormat != dumpFormatText && dumpFormat != dumpFormatJSONL {
			return fmt.Errorf("--format must be %q or %q", dumpFormatText, dumpFormatJSONL)
		}

		if err := os.MkdirAll(filepath.Dir(dumpOutput), 0755); err != nil {
			return err
		}
		file, err := os.Create(dumpOutput)
		if err != nil {
			return err
		}
		defer file.Close()

		w := bufio.NewWriter(file)
		bar := progressbar.NewOptions64(dumpLists,
			progressbar.OptionSetDescription("generating"),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(cmd.ErrOrStderr()) }),
		)

		written, skipped, err := dump(newGenerator(), w, dumpLists, dumpFormat, func() { _ = bar.Add(1) })
		if err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		_ = bar.Finish()

		logger.Info("dump complete",
			zap.String("output", dumpOutput),
			zap.Int64("written", written),
			zap.Int64("skipped", skipped))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d lists to %s (%d skipped)\n", written, dumpOutput, skipped)

		return nil
	},
}

func init() {
	dumpCmd.Flags().Int64Var(&dumpLists, "lists", 1e3, "number of text lists to generate")
	dumpCmd.Flags().StringVar(&dumpOutput, "output", "var/texts.txt", "output file path")
	dumpCmd.Flags().StringVar(&dumpFormat, "format", dumpFormatText, "output format (text, jsonl)")
}

// dump writes n lists from g to w. Allocation failures skip the list.
func dump(g *gentexts.Generator, w io.Writer, n int64, format string, progress func()) (written, skipped int64, err error) {
	enc := json.NewEncoder(w)

	for i := int64(0); i < n; i++ {
		l, genErr := g.TextList()
		if errors.Is(genErr, gentexts.ErrAllocation) {
			skipped++
			progress()
			continue
		}
		if genErr != nil {
			return written, skipped, genErr
		}

		switch format {
		case dumpFormatJSONL:
			err = enc.Encode(protocol.TextListResponse{Count: l.Len(), Texts: l.Texts()})
		default:
			err = writeTextBlock(w, l)
		}
		l.Release()
		if err != nil {
			return written, skipped, err
		}

		written++
		progress()
	}

	return written, skipped, nil
}

func writeTextBlock(w io.Writer, l *gentexts.TextList) error {
	for i := 0; i < l.Len(); i++ {
		if _, err := io.WriteString(w, l.At(i)+"\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}
