package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const replHelp = `
feagictl interactive shell — available commands:

  health                           Check server health
  sessions                         List active sessions
  session <agentId>                Show one session's phase and endpoints
  burst                            Show burst-loop stats
  set-frequency <hz>               Force a burst-frequency parameter update
  snapshot <sessions|burst> <file> Save a msgpack snapshot to a file

  \status                          Show connection info
  \help                            Show this help
  \quit  (or exit, quit, Ctrl-D)    Exit
`

// runREPL starts the interactive shell. conn and httpClient are already
// initialised by the cobra PersistentPreRunE. Grounded on
// cmd/qubicdb-cli/repl.go's runREPL, trimmed of the index-switching and
// admin-credential steps the debug surface has no equivalent of.
func runREPL(c *cli) {
	if err := c.doRequest("GET", "/health", ""); err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot reach %s — %v\n", c.conn.BaseURL(), err)
		os.Exit(1)
	}

	fmt.Printf("Connected to feagi-core at %s\nType \\help for commands, \\quit to exit.\n\n", c.conn.BaseURL())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("feagictl> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if done := dispatchREPL(c, line); done {
			fmt.Println("Bye.")
			break
		}
	}
}

// dispatchREPL parses and executes one REPL line. Returns true when the
// user wants to quit.
func dispatchREPL(c *cli, line string) bool {
	parts := tokenize(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case `\quit`, `\q`, "exit", "quit":
		return true

	case `\help`, `\h`, "help":
		fmt.Print(replHelp)

	case `\status`:
		fmt.Printf("server: %s\n", c.conn.BaseURL())

	case "health", "ping":
		if err := c.getJSON("/health"); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

	case "sessions":
		if err := c.getJSON("/debug/sessions"); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

	case "session":
		if len(parts) < 2 {
			fmt.Fprintln(os.Stderr, "usage: session <agentId>")
			break
		}
		if err := c.showSession(parts[1]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

	case "burst":
		if err := c.getJSON("/debug/burst"); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

	case "set-frequency":
		if len(parts) < 2 {
			fmt.Fprintln(os.Stderr, "usage: set-frequency <hz>")
			break
		}
		hz, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid frequency %q: %v\n", parts[1], err)
			break
		}
		if err := c.setParameter("", "burst_frequency_hz", hz); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

	case "snapshot":
		if len(parts) < 3 {
			fmt.Fprintln(os.Stderr, "usage: snapshot <sessions|burst> <file>")
			break
		}
		if err := c.saveSnapshot(parts[1], parts[2]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q — type \\help for a list\n", cmd)
	}

	return false
}

// tokenize splits a REPL line into words, honouring single- and
// double-quoted substrings. Grounded verbatim on cmd/qubicdb-cli/repl.go's
// tokenize.
func tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case inQuote:
			if ch == quoteChar {
				inQuote = false
			} else {
				cur.WriteRune(ch)
			}
		case ch == '"' || ch == '\'':
			inQuote = true
			quoteChar = ch
		case ch == ' ' || ch == '\t':
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(ch)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
