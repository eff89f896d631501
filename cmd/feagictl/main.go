// Command feagictl is a small operator CLI/REPL for inspecting a running
// feagi-core instance over its debug HTTP surface, in the style of
// cmd/qubicdb-cli: list sessions, show a session's phase, show burst-loop
// stats, force a parameter update. Not part of feagi-core's public
// contract — an operational convenience only.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// cli holds the shared state for all subcommands.
type cli struct {
	conn       *connInfo
	httpClient *http.Client
}

func main() {
	var connectStr string

	c := &cli{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	rootCmd := &cobra.Command{
		Use:   "feagictl",
		Short: "feagictl — operator client for feagi-core's debug HTTP surface",
		Long:  "A command-line client for inspecting a running feagi-core instance: sessions, burst-loop stats, and forced parameter updates.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if connectStr == "" {
				connectStr = os.Getenv("FEAGI_URL")
			}
			if connectStr == "" {
				connectStr = "feagi://localhost:8081"
			}
			info, err := parseConnString(connectStr)
			if err != nil {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			c.conn = info
			return nil
		},
		// When called with no subcommand, drop into the interactive shell.
		RunE: func(cmd *cobra.Command, args []string) error {
			runREPL(c)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&connectStr, "connect", "", "Connection string (feagi://host[:port]), default feagi://localhost:8081")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check feagi-core health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.getJSON("/health")
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "sessions",
		Short: "List active sessions and their phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.getJSON("/debug/sessions")
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "session [agentId]",
		Short: "Show a single session's phase and endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.showSession(args[0])
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "burst",
		Short: "Show burst-loop stats (index, frequency, archived areas)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.getJSON("/debug/burst")
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "set-frequency [hz]",
		Short: "Force a burst-frequency parameter update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hz, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid frequency %q: %w", args[0], err)
			}
			return c.setParameter("", "burst_frequency_hz", hz)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "snapshot [sessions|burst] [outfile]",
		Short: "Save a msgpack snapshot of the registry or burst engine to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.saveSnapshot(args[0], args[1])
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// showSession fetches the session list and filters client-side — the debug
// surface has no per-session route, matching its minimal scope (SPEC_FULL.md
// §10.4).
func (c *cli) showSession(agentID string) error {
	url := c.conn.BaseURL() + "/debug/sessions"
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Sessions []map[string]any `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	for _, s := range body.Sessions {
		if id, _ := s["agentId"].(string); id == agentID {
			out, _ := json.MarshalIndent(s, "", "  ")
			fmt.Println(string(out))
			return nil
		}
	}
	return fmt.Errorf("no session with agentId %q", agentID)
}

// saveSnapshot fetches a msgpack snapshot from the debug surface and
// writes it to outfile verbatim — feagictl does not decode it, since the
// snapshot's msgpack schema belongs to pkg/session/pkg/burst, not to this
// client.
func (c *cli) saveSnapshot(kind, outfile string) error {
	var path string
	switch kind {
	case "sessions":
		path = "/debug/sessions/snapshot"
	case "burst":
		path = "/debug/burst/snapshot"
	default:
		return fmt.Errorf("unknown snapshot kind %q (want \"sessions\" or \"burst\")", kind)
	}

	req, err := http.NewRequest(http.MethodGet, c.conn.BaseURL()+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(data))
	}

	f, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outfile, err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	fmt.Printf("wrote %d bytes to %s\n", n, outfile)
	return nil
}

// setParameter posts a forced ParameterUpdate to /debug/burst/parameter.
func (c *cli) setParameter(corticalID, name string, value any) error {
	body, err := json.Marshal(map[string]any{
		"corticalId":    corticalID,
		"parameterName": name,
		"value":         value,
	})
	if err != nil {
		return err
	}
	return c.doRequest(http.MethodPost, "/debug/burst/parameter", string(body))
}

// getJSON performs a GET request and pretty-prints the JSON response.
func (c *cli) getJSON(path string) error {
	return c.doRequest(http.MethodGet, path, "")
}

// doRequest is feagictl's single HTTP round trip: issue the request, print
// the server's error envelope on failure, pretty-print JSON on success.
// Grounded on cli.doRequest in cmd/qubicdb-cli/main.go, trimmed of the
// X-Index-ID header and basic-auth branch the debug surface has no use for.
func (c *cli) doRequest(method, path, body string) error {
	url := c.conn.BaseURL() + path

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "Error %d: %s\n", resp.StatusCode, string(data))
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var pretty map[string]any
	if err := json.Unmarshal(data, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
	} else {
		fmt.Println(string(data))
	}
	return nil
}
