package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/stefanpenner/taskbuddy/pkg/api"
	"github.com/stefanpenner/taskbuddy/pkg/api/fakeapi"
	"github.com/stefanpenner/taskbuddy/pkg/config"
	"github.com/stefanpenner/taskbuddy/pkg/session"
	"github.com/stefanpenner/taskbuddy/pkg/tui"
)

const usage = "Usage: taskbuddy [--json] [--config path] [--dir path] " +
	"[login|register|logout|whoami|list|day|week|add|edit|complete|incomplete|delete|notifications|read|profile|settings|config|demo]"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, session.ErrNoSession) || errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "Run `taskbuddy login <email>` first.")
		}
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	cfg     config.Config
	session *session.Store
	client  *api.Client
	jsonOut bool
}

func run() error {
	args := os.Args[1:]
	dataDir := config.ResolveDataDir(args)
	_, args = flagValue(args, "--dir")
	cfgPath, args := flagValue(args, "--config")
	jsonOutput := hasFlag(args, "--json")
	args = removeFlag(args, "--json")

	if len(args) > 0 && args[0] == "demo" {
		return runDemo()
	}

	cfg, err := config.Load(dataDir, cfgPath)
	if err != nil {
		return err
	}
	logFile, err := config.OpenLogFile(dataDir)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := config.NewLogger(cfg.LogLevel, logFile)

	s, err := session.NewStore(dataDir)
	if err != nil {
		return err
	}
	a := &app{
		cfg:     cfg,
		session: s,
		client:  api.NewClient(cfg.APIEndpoints(), s, cfg.Timeout, log),
		jsonOut: jsonOutput,
	}

	if len(args) == 0 {
		return runTUI(s, a.client, &a.cfg)
	}

	ctx := context.Background()
	switch args[0] {
	case "login":
		if len(args) < 2 {
			return fmt.Errorf("usage: taskbuddy login <email>")
		}
		return a.cmdLogin(ctx, args[1])
	case "register":
		if len(args) < 3 {
			return fmt.Errorf("usage: taskbuddy register <email> <username>")
		}
		return a.cmdRegister(ctx, args[1], args[2])
	case "logout":
		return a.cmdLogout()
	case "whoami":
		return a.cmdWhoami(ctx, hasFlag(args, "--verify"))
	case "list":
		return a.cmdList(ctx, args[1:])
	case "day":
		return a.cmdDay(ctx, optionalArg(args, 1))
	case "week":
		return a.cmdWeek(ctx, optionalArg(args, 1))
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: taskbuddy add <title> --category c [--priority p] [--due YYYY-MM-DD] [--desc text]")
		}
		return a.cmdAdd(ctx, args[1:])
	case "edit":
		if len(args) < 2 {
			return fmt.Errorf("usage: taskbuddy edit <id> [--title t] [--category c] [--priority p] [--due YYYY-MM-DD] [--desc text]")
		}
		return a.cmdEdit(ctx, args[1], args[2:])
	case "complete":
		if len(args) < 2 {
			return fmt.Errorf("usage: taskbuddy complete <id>")
		}
		return a.cmdSetCompleted(ctx, args[1], true)
	case "incomplete":
		if len(args) < 2 {
			return fmt.Errorf("usage: taskbuddy incomplete <id>")
		}
		return a.cmdSetCompleted(ctx, args[1], false)
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: taskbuddy delete <id>")
		}
		return a.cmdDelete(ctx, args[1])
	case "notifications":
		return a.cmdNotifications(ctx, hasFlag(args, "--unread"))
	case "read":
		if len(args) < 2 {
			return fmt.Errorf("usage: taskbuddy read <id|all>")
		}
		return a.cmdRead(ctx, args[1])
	case "profile":
		if len(args) > 1 && args[1] == "set" {
			return a.cmdProfileSet(ctx, args[2:])
		}
		return a.cmdProfile(ctx)
	case "settings":
		if len(args) > 1 && args[1] == "set" {
			return a.cmdSettingsSet(args[2:])
		}
		return a.cmdSettings()
	case "config":
		return a.cmdConfig()
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func removeFlag(args []string, flag string) []string {
	var result []string
	for _, a := range args {
		if a != flag {
			result = append(result, a)
		}
	}
	return result
}

// flagValue removes "flag value" from args and returns the value. A flag
// given as the last argument is dropped with an empty value.
func flagValue(args []string, flag string) (string, []string) {
	var value string
	var result []string
	for i := 0; i < len(args); i++ {
		if args[i] == flag {
			if i+1 < len(args) {
				value = args[i+1]
				i++
			}
			continue
		}
		result = append(result, args[i])
	}
	return value, result
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func runTUI(s *session.Store, b tui.Backend, cfg *config.Config) error {
	m := tui.NewModel(b, s, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Session watcher: a login or logout in another terminal shows up here.
	cleanup, err := tui.StartWatcher(s.Dir(), p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: session watcher failed: %v\n", err)
	} else {
		defer cleanup()
	}

	_, err = p.Run()
	return err
}

// runDemo serves a seeded in-memory remote on a loopback port and runs the
// TUI against it from a throwaway data dir.
func runDemo() error {
	dataDir, err := os.MkdirTemp("", "taskbuddy-demo-")
	if err != nil {
		return fmt.Errorf("creating demo directory: %w", err)
	}
	defer os.RemoveAll(dataDir)

	logFile, err := config.OpenLogFile(dataDir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	cfg, err := config.Load(dataDir, "")
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.LogLevel, logFile)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting demo server: %w", err)
	}
	fake := fakeapi.New(logFile)
	srv := &http.Server{Handler: fake.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("demo server stopped", "error", err)
		}
	}()
	defer srv.Close()

	cfg.Endpoints = config.Endpoints(fakeapi.Endpoints("http://" + ln.Addr().String()))
	log.Info("demo server listening", "addr", ln.Addr().String())

	user, token := fake.SeedDemo(time.Now())
	s, err := session.NewStore(dataDir)
	if err != nil {
		return err
	}
	if err := s.Save(user, token); err != nil {
		return err
	}

	client := api.NewClient(cfg.APIEndpoints(), s, cfg.Timeout, log)
	return runTUI(s, client, &cfg)
}

// readPassword prompts without echo on a terminal and reads one line from
// stdin otherwise.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return trimNewline(line), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
