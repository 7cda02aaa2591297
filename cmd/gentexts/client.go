package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pkg.jsn.cam/gentexts/internal/archive"
	"pkg.jsn.cam/gentexts/pkg/gentexts/httpx"
	"pkg.jsn.cam/gentexts/pkg/gentexts/protocol"
)

var (
	serverURL    string
	historyLimit int
)

// apiClient talks to a running gentexts server
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL: serverURL,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	return httpx.Decode(resp, v)
}

// serverVersion asks the server which API version it speaks
func (c *apiClient) serverVersion(ctx context.Context) (string, error) {
	var resp protocol.VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// skipVersionCheck marks client commands that must work against any server
const skipVersionCheck = "skip-version-check"

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Query a running gentexts server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if cmd.Annotations[skipVersionCheck] != "" {
			return nil
		}

		v, err := newAPIClient().serverVersion(background(cmd))
		if err != nil {
			return err
		}
		return protocol.CheckVersion(v)
	},
}

var clientRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print a random text from the server's pool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp protocol.RandomTextResponse
		if err := newAPIClient().do(background(cmd), http.MethodGet, "/api/texts/random", &resp); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
		return nil
	},
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "Generate and print a new text list on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp protocol.TextListResponse
		if err := newAPIClient().do(background(cmd), http.MethodGet, "/api/texts", &resp); err != nil {
			return err
		}

		printTextList(cmd, resp)
		return nil
	},
}

var clientRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Replace the server's text pool",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp protocol.TextListResponse
		if err := newAPIClient().do(background(cmd), http.MethodPost, "/api/texts/refresh", &resp); err != nil {
			return err
		}

		printTextList(cmd, resp)
		return nil
	},
}

func printTextList(cmd *cobra.Command, resp protocol.TextListResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Text list %s (%d texts):\n", resp.ID, resp.Count)
	for i, text := range resp.Texts {
		fmt.Fprintf(out, "  %d: %s\n", i+1, text)
	}
}

var clientTimeCmd = &cobra.Command{
	Use:   "time",
	Short: "Print the server's world time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := background(cmd)
		client := newAPIClient()

		var t protocol.TimeResponse
		if err := client.do(ctx, http.MethodGet, "/api/time", &t); err != nil {
			return err
		}

		var elapsed protocol.ElapsedResponse
		if err := client.do(ctx, http.MethodGet, "/api/elapsed", &elapsed); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", t.Title)
		fmt.Fprintf(out, "  Timezone:   %s (%s, UTC%s)\n", t.Timezone, t.Abbreviation, t.UTCOffset)
		fmt.Fprintf(out, "  Datetime:   %s\n", t.Datetime)
		fmt.Fprintf(out, "  Server up:  %s\n", time.Duration(elapsed.Seconds*float64(time.Second)).Round(time.Second))
		return nil
	},
}

var clientHistoryCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List archived text lists, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := background(cmd)
		client := newAPIClient()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			var entry protocol.HistoryEntry
			if err := client.do(ctx, http.MethodGet, "/api/history/"+args[0], &entry); err != nil {
				return err
			}
			printTextList(cmd, protocol.TextListResponse{ID: entry.ID, Count: entry.Count, Texts: entry.Texts})
			return nil
		}

		var resp protocol.HistoryResponse
		path := "/api/history?limit=" + strconv.Itoa(historyLimit)
		if err := client.do(ctx, http.MethodGet, path, &resp); err != nil {
			return err
		}

		if len(resp.Entries) == 0 {
			fmt.Fprintln(out, "No text lists yet")
			return nil
		}

		fmt.Fprintf(out, "%-36s %-6s %-10s %s\n", "ID", "TEXTS", "SIZE", "CREATED")
		fmt.Fprintln(out, "────────────────────────────────────────────────────────────────────────────")
		for _, e := range resp.Entries {
			fmt.Fprintf(out, "%-36s %-6d %-10s %s\n",
				e.ID,
				e.Count,
				humanize.Bytes(uint64(e.Bytes)),
				humanize.Time(e.CreatedAt))
		}
		return nil
	},
}

var clientVersionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the client and server API versions and whether they match",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipVersionCheck: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newAPIClient().serverVersion(background(cmd))
		if err != nil {
			return err
		}

		status := "compatible"
		if err := protocol.CheckVersion(v); err != nil {
			status = err.Error()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "client %s, server %s (%s)\n", protocol.Version, v, status)
		return nil
	},
}

func init() {
	clientCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "server base URL")
	clientHistoryCmd.Flags().IntVar(&historyLimit, "limit", archive.DefaultListLimit, "number of lists to show")

	clientCmd.AddCommand(clientRandomCmd, clientListCmd, clientRefreshCmd, clientTimeCmd, clientHistoryCmd, clientVersionCmd)
}
