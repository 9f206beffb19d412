package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hondurasarchive/backend/internal/client"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// readPassword is swapped in tests to avoid touching the terminal
var readPassword = term.ReadPassword

func newAPIClient() *client.Client {
	return client.New(apiURL)
}

func sessionStore() (*client.SessionStore, error) {
	path := sessionPath
	if path == "" {
		var err error
		path, err = client.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
	}
	return client.NewSessionStore(path), nil
}

// loadSession returns the stored session, or client.ErrNotLoggedIn when there is none
func loadSession() (*client.Session, error) {
	store, err := sessionStore()
	if err != nil {
		return nil, err
	}
	session, err := store.Load()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: run \"honduras-archive login\" first", client.ErrNotLoggedIn)
	}
	return session, nil
}

// clearOnUnauthorized drops a session the server no longer accepts
func clearOnUnauthorized(err error) error {
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	if store, storeErr := sessionStore(); storeErr == nil {
		_ = store.Clear()
	}
	return fmt.Errorf("%w: session expired, log in again", err)
}

// promptPassword reads a password without echo from a terminal, or a single line otherwise
func promptPassword(in *os.File, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	if term.IsTerminal(int(in.Fd())) {
		pw, err := readPassword(int(in.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseIDArg(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// render writes v as JSON or YAML, or the text produced by textFn
func render(w io.Writer, v any, textFn func() string) error {
	switch strings.ToLower(outputFormat) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		_, err := fmt.Fprintln(w, textFn())
		return err
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
