package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkg.jsn.cam/gentexts/pkg/gentexts"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print one random text list",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := newGenerator()

		var count int
		l, err := gentexts.GenerateTextList(g, &count)
		if err != nil {
			return fmt.Errorf("no texts generated: %w", err)
		}
		defer gentexts.FreeTextList(l, count)

		out := cmd.OutOrStdout()
		for i, text := range l.Texts() {
			fmt.Fprintf(out, "%d: %s\n", i+1, text)
		}

		return nil
	},
}

// newGenerator builds a standalone generator from the loaded config
func newGenerator() *gentexts.Generator {
	s := cfg.Seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	return gentexts.NewSeeded(s, gentexts.WithQuota(gentexts.NewQuota(cfg.QuotaBytes)))
}
