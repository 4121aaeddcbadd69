package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	timeout   time.Duration
	rootCmd   = &cobra.Command{
		Use:   "xmd",
		Short: "xmd CLI - Control the 404-XMD WhatsApp bot",
		Long:  `A command-line interface for the bot's HTTP API: resolve Facebook links, check status and browse download history.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "Request timeout")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: timeout}
}

// fetch performs the request and exits on transport errors or non-2xx status
func fetch(req *http.Request) []byte {
	resp, err := httpClient().Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Fprintf(os.Stderr, "Error (%d): %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}
	return body
}

func get(path string) []byte {
	req, err := http.NewRequest(http.MethodGet, serverURL+path, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return fetch(req)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [url]",
	Short: "Resolve a Facebook link to a direct video URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, _ := json.Marshal(map[string]string{"url": args[0]})
		req, err := http.NewRequest(http.MethodPost, serverURL+"/api/v1/resolve", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		req.Header.Set("Content-Type", "application/json")

		var result map[string]interface{}
		json.Unmarshal(fetch(req), &result)
		fmt.Printf("Title:    %s\n", result["title"])
		fmt.Printf("Provider: %s\n", result["provider"])
		fmt.Printf("URL:      %s\n", result["url"])
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the bot status block",
	Run: func(cmd *cobra.Command, args []string) {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			var snapshot map[string]interface{}
			json.Unmarshal(get("/api/v1/status"), &snapshot)
			prettyJSON, _ := json.MarshalIndent(snapshot, "", "  ")
			fmt.Println(string(prettyJSON))
			return
		}
		fmt.Println(string(get("/api/v1/status?format=text")))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent facebook downloads",
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		query := url.Values{}
		if status != "" {
			query.Set("status", status)
		}
		query.Set("limit", strconv.Itoa(limit))

		var records []map[string]interface{}
		json.Unmarshal(get("/api/v1/downloads?"+query.Encode()), &records)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tURL\tPROVIDER\tSTATUS\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncate(stringField(r, "id"), 8),
				truncate(stringField(r, "request_url"), 40),
				stringField(r, "provider"),
				stringField(r, "status"),
				stringField(r, "created_at"))
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	Run: func(cmd *cobra.Command, args []string) {
		var stats struct {
			Total               int64            `json:"total"`
			Delivered           int64            `json:"delivered"`
			DeliveredAsDocument int64            `json:"delivered_as_document"`
			Rejected            int64            `json:"rejected"`
			Exhausted           int64            `json:"exhausted"`
			Failed              int64            `json:"failed"`
			ByProvider          map[string]int64 `json:"by_provider"`
		}
		json.Unmarshal(get("/api/v1/downloads/stats"), &stats)

		fmt.Println("Download Statistics:")
		fmt.Printf("  Total:        %d\n", stats.Total)
		fmt.Printf("  Delivered:    %d\n", stats.Delivered)
		fmt.Printf("  As document:  %d\n", stats.DeliveredAsDocument)
		fmt.Printf("  Rejected:     %d\n", stats.Rejected)
		fmt.Printf("  Exhausted:    %d\n", stats.Exhausted)
		fmt.Printf("  Failed:       %d\n", stats.Failed)
		if len(stats.ByProvider) > 0 {
			fmt.Println("By provider:")
			for name, count := range stats.ByProvider {
				fmt.Printf("  %-22s %d\n", name+":", count)
			}
		}
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health and WhatsApp connection",
	Run: func(cmd *cobra.Command, args []string) {
		var health struct {
			Status   string `json:"status"`
			Version  string `json:"version"`
			WhatsApp struct {
				Connected bool `json:"connected"`
			} `json:"whatsapp"`
		}
		json.Unmarshal(get("/health"), &health)

		fmt.Printf("Status:    %s\n", health.Status)
		fmt.Printf("Version:   %s\n", health.Version)
		fmt.Printf("WhatsApp:  %s\n", map[bool]string{true: "connected", false: "disconnected"}[health.WhatsApp.Connected])
	},
}

func init() {
	statusCmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (delivered, delivered_as_document, rejected, exhausted, failed)")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of records")
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
