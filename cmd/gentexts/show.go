package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/gentexts/internal/display"
)

var (
	textInterval    time.Duration
	elapsedInterval time.Duration
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the world time, a random text and the elapsed time in the terminal",
	Long: `Fetches the world time once, then prints a random text from the pool
every --text-interval and the elapsed time every --elapsed-interval until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("text-interval") {
			cfg.TextInterval = textInterval
		}
		if cmd.Flags().Changed("elapsed-interval") {
			cfg.ElapsedInterval = elapsedInterval
		}

		b, err := newBackend()
		if err != nil {
			return err
		}
		defer func() {
			if err := b.Close(); err != nil {
				logger.Error("failed to close backend", zap.Error(err))
			}
		}()

		ctx, stop := signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := display.New(b, cmd.OutOrStdout(), display.Config{
			TextInterval:    cfg.TextInterval,
			ElapsedInterval: cfg.ElapsedInterval,
		}, logger)

		return p.Run(ctx)
	},
}

func init() {
	showCmd.Flags().DurationVar(&textInterval, "text-interval", 10*time.Second, "how often a new text is shown")
	showCmd.Flags().DurationVar(&elapsedInterval, "elapsed-interval", time.Second, "how often the elapsed time is shown")
}
