package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"codefix/internal/cli/command"
	"codefix/internal/cli/config"
	httpclient "codefix/internal/cli/http"
	"codefix/internal/cli/repl"
	"codefix/internal/cli/state"
)

const defaultConfigPath = "configs/cli.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 30s)")
	statePath := flag.String("state", "", "Override state path")
	noColor := flag.Bool("no-color", false, "Disable highlight colors")
	raw := flag.Bool("raw", false, "Print JSON responses without indentation")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *statePath != "" {
		cfg.StatePath = *statePath
	}
	if *noColor {
		value := false
		cfg.Color = &value
	}
	if *raw {
		value := false
		cfg.PrettyJSON = &value
	}

	st, err := state.Load(cfg.StatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load state failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := httpclient.New(cfg.BaseURL, cfg.Timeout)
	opts := repl.Options{
		StatePath:  cfg.StatePath,
		PrettyJSON: *cfg.PrettyJSON,
		Color:      *cfg.Color,
	}

	// One-shot mode: codefix-cli compiler run file=main.py
	if args := flag.Args(); len(args) > 0 {
		session := repl.New(client, command.Registry(), &st, nil, os.Stdout, opts)
		if err := session.Execute(ctx, quoteArgs(args)); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rl, err := repl.NewReadline(cfg.HistoryFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init readline failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	session := repl.New(client, command.Registry(), &st, rl, rl.Stdout(), opts)
	session.Run(ctx)
}

// quoteArgs rebuilds a command line the REPL tokenizer splits back into args.
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
	}
	return strings.Join(quoted, " ")
}
