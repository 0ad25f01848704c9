package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codefix/internal/cli/command"
	httpclient "codefix/internal/cli/http"
	"codefix/internal/cli/render"
	"codefix/internal/cli/state"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

const Prompt = "codefix> "

// LineReader is the subset of readline.Instance used by the REPL.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Options configures a Session.
type Options struct {
	StatePath  string
	PrettyJSON bool
	Color      bool
}

// Session holds REPL state.
type Session struct {
	client   *httpclient.Client
	commands map[string]command.Command
	state    *state.State
	opts     Options
	renderer *render.Renderer
	reader   LineReader
	out      io.Writer
}

func New(client *httpclient.Client, commands map[string]command.Command, st *state.State, reader LineReader, out io.Writer, opts Options) *Session {
	return &Session{
		client:   client,
		commands: commands,
		state:    st,
		opts:     opts,
		renderer: render.New(opts.Color),
		reader:   reader,
		out:      out,
	}
}

// NewReadline opens a readline instance with persistent history.
func NewReadline(historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// Run reads commands until exit, EOF or ctx is done.
func (s *Session) Run(ctx context.Context) {
	for ctx.Err() == nil {
		s.reader.SetPrompt(Prompt)
		line, err := s.reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.printLine("read input failed: %v", err)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		handled, exit := s.handleSystemCommand(line)
		if exit {
			s.printLine("bye")
			return
		}
		if handled {
			continue
		}
		if err := s.Execute(ctx, line); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

func (s *Session) handleSystemCommand(line string) (handled, exit bool) {
	switch line {
	case "exit", "quit":
		return true, true
	case "help":
		s.printHelp()
		return true, false
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return true, false
	}
	if strings.HasPrefix(line, "show ") {
		s.handleShow(strings.TrimSpace(strings.TrimPrefix(line, "show ")))
		return true, false
	}
	return false, false
}

func (s *Session) handleSet(args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		s.printLine("usage: set base|timeout|language|session")
		return
	}
	switch parts[0] {
	case "base":
		if len(parts) < 2 {
			s.printLine("usage: set base http://127.0.0.1:5000")
			return
		}
		s.client.SetBaseURL(parts[1])
		s.printLine("base set to %s", parts[1])
	case "timeout":
		if len(parts) < 2 {
			s.printLine("usage: set timeout 30s")
			return
		}
		dur, err := time.ParseDuration(parts[1])
		if err != nil || dur <= 0 {
			s.printLine("invalid duration: %s", parts[1])
			return
		}
		s.client.SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	case "language":
		if len(parts) < 2 {
			s.printLine("usage: set language python")
			return
		}
		s.state.Language = parts[1]
		s.saveState()
		s.printLine("language set to %s", parts[1])
	case "session":
		if len(parts) < 2 {
			s.printLine("usage: set session <id>")
			return
		}
		s.state.SessionID = parts[1]
		s.saveState()
		s.printLine("session set to %s", parts[1])
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(args string) {
	switch args {
	case "config":
		s.printLine("base: %s", s.client.BaseURL())
		s.printLine("timeout: %s", s.client.Timeout())
		s.printLine("statePath: %s", s.opts.StatePath)
		s.printLine("prettyJSON: %t", s.opts.PrettyJSON)
		s.printLine("color: %t", s.opts.Color)
		s.printLine("language: %s", orEmpty(s.state.Language))
		s.printLine("session: %s", orEmpty(s.state.SessionID))
	default:
		s.printLine("usage: show config")
	}
}

// Execute runs one "<service> <action> key=value ..." line.
func (s *Session) Execute(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	cmd, ok := s.commands[tokens[0]+" "+tokens[1]]
	if !ok {
		return fmt.Errorf("unknown command: %s %s", tokens[0], tokens[1])
	}
	params, err := command.ParseParams(tokens[2:])
	if err != nil {
		return err
	}
	params.Canonicalize(cmd.Fields)
	if err := command.ResolveFile(cmd, params); err != nil {
		return err
	}
	s.applyStateDefaults(cmd, params)
	if err := s.promptMissing(cmd, params); err != nil {
		return err
	}

	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(ctx, req.Method, req.Path, req.Headers, req.Body)
	if err != nil {
		return err
	}

	if cmd.Service == "compiler" && cmd.Action == "fix" && s.renderFix(resp) {
		s.updateState(cmd, params, resp)
		return nil
	}
	s.renderResponse(resp)
	s.updateState(cmd, params, resp)
	return nil
}

// applyStateDefaults fills the current session id and preferred language.
func (s *Session) applyStateDefaults(cmd command.Command, params command.Params) {
	for _, field := range cmd.Fields {
		switch {
		case field.Type == command.FieldPath && field.Name == "id" && !params.Has("id") && s.state.SessionID != "":
			params.Set("id", s.state.SessionID)
		case field.Name == "language" && field.Default != "" && !params.Has("language") && s.state.Language != "":
			params.Set("language", s.state.Language)
		}
	}
}

func (s *Session) promptMissing(cmd command.Command, params command.Params) error {
	for _, field := range cmd.Fields {
		if !field.Required || strings.TrimSpace(params.Get(field.Name)) != "" {
			continue
		}
		if s.reader == nil {
			return fmt.Errorf("missing required parameter: %s", field.Name)
		}
		s.reader.SetPrompt(field.Prompt + ": ")
		value, err := s.reader.Readline()
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}
		params.Set(field.Name, strings.TrimSpace(value))
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func (s *Session) renderFix(resp httpclient.ResponseInfo) bool {
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil || !env.Success {
		return false
	}
	var result render.FixResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return false
	}
	s.printLine("HTTP %d (%s)", resp.StatusCode, resp.Duration)
	_, _ = io.WriteString(s.out, s.renderer.Fix(result))
	return true
}

func (s *Session) renderResponse(resp httpclient.ResponseInfo) {
	s.printLine("HTTP %d (%s)", resp.StatusCode, resp.Duration)
	if len(resp.Body) == 0 {
		return
	}
	if s.opts.PrettyJSON {
		var raw interface{}
		if err := json.Unmarshal(resp.Body, &raw); err == nil {
			formatted, _ := json.MarshalIndent(raw, "", "  ")
			s.printLine("%s", string(formatted))
			return
		}
	}
	s.printLine("%s", string(resp.Body))
}

func (s *Session) updateState(cmd command.Command, params command.Params, resp httpclient.ResponseInfo) {
	if cmd.Service != "session" || resp.StatusCode >= http.StatusBadRequest {
		return
	}
	switch cmd.Action {
	case "create":
		var env struct {
			Data struct {
				Session struct {
					ID string `json:"id"`
				} `json:"session"`
			} `json:"data"`
		}
		if err := json.Unmarshal(resp.Body, &env); err != nil || env.Data.Session.ID == "" {
			return
		}
		s.state.SessionID = env.Data.Session.ID
		s.saveState()
		s.printLine("current session: %s", s.state.SessionID)
	case "delete":
		if params.Get("id") == s.state.SessionID {
			s.state.SessionID = ""
			s.saveState()
		}
	}
}

func (s *Session) saveState() {
	if s.opts.StatePath == "" {
		return
	}
	if err := state.Save(s.opts.StatePath, *s.state); err != nil {
		s.printLine("save state failed: %v", err)
	}
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> key=value ...")
	s.printLine("system: help | exit | set base|timeout|language|session | show config")
	s.printLine("commands:")
	for _, name := range command.Names(s.commands) {
		s.printLine("  %-20s %s", name, s.commands[name].Summary)
	}
	s.printLine("examples:")
	s.printLine("  compiler run file=./main.py")
	s.printLine("  compiler fix code=\"print(x\" issue=\"SyntaxError\"")
	s.printLine("  ai generate description=\"reverse a string\"")
	s.printLine("  session update code=\"print(1)\"")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format+"\n", args...)
}

func orEmpty(value string) string {
	if value == "" {
		return "<empty>"
	}
	return value
}
