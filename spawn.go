package mcpkit

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"time"
)

// SpawnOptions starts the HTTP server as a local child process before
// connecting; the transport URL names where it will listen.
type SpawnOptions struct {
	Command   string            `yaml:"command" json:"command"`
	Arguments []string          `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	Dir       string            `yaml:"dir,omitempty" json:"dir,omitempty"`

	// ReadyTimeout bounds the readiness wait; zero applies the default.
	ReadyTimeout time.Duration `yaml:"readyTimeout,omitempty" json:"readyTimeout,omitempty"`
}

const (
	readinessInitialDelay = 10 * time.Millisecond
	readinessMaxDelay     = 500 * time.Millisecond
	readinessTimeout      = 30 * time.Second
)

// spawnedServer tracks a child HTTP server for the lifetime of a session.
type spawnedServer struct {
	cmd      *exec.Cmd
	done     chan error
	exitErr  error
	finished bool
}

// spawn starts the child and begins reaping it in the background.
func (o *SpawnOptions) spawn() (*spawnedServer, error) {
	if o.Command == "" {
		return nil, fmt.Errorf("command is required to spawn an HTTP server")
	}
	cmd := exec.Command(o.Command, o.Arguments...)
	cmd.Dir = o.Dir
	cmd.Env = os.Environ()
	keys := make([]string, 0, len(o.Env))
	for key := range o.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cmd.Env = append(cmd.Env, key+"="+o.Env[key])
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", o.Command, err)
	}
	ret := &spawnedServer{cmd: cmd, done: make(chan error, 1)}
	go func() { ret.done <- cmd.Wait() }()
	return ret, nil
}

// exited reports whether the child has terminated.
func (s *spawnedServer) exited() bool {
	if s.finished {
		return true
	}
	select {
	case err := <-s.done:
		s.exitErr = err
		s.finished = true
		return true
	default:
		return false
	}
}

// stop terminates the child, escalating to kill when it ignores the
// interrupt.
func (s *spawnedServer) stop() error {
	if s.exited() {
		return nil
	}
	_ = s.cmd.Process.Signal(os.Interrupt)
	select {
	case err := <-s.done:
		s.exitErr = err
	case <-time.After(2 * time.Second):
		_ = s.cmd.Process.Kill()
		s.exitErr = <-s.done
	}
	s.finished = true
	return nil
}

// nextDelay doubles the poll interval up to the cap.
func nextDelay(delay time.Duration) time.Duration {
	delay *= 2
	if delay > readinessMaxDelay {
		return readinessMaxDelay
	}
	return delay
}

// awaitReady polls the endpoint until it answers, the child exits, or the
// deadline passes. Any HTTP response counts as listening.
func awaitReady(ctx context.Context, endpoint string, child *spawnedServer, timeout time.Duration, httpClient *http.Client) error {
	if timeout <= 0 {
		timeout = readinessTimeout
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	deadline := time.Now().Add(timeout)
	delay := readinessInitialDelay
	for {
		if child != nil && child.exited() {
			if child.exitErr != nil {
				return fmt.Errorf("server exited before becoming ready: %w", child.exitErr)
			}
			return fmt.Errorf("server exited before becoming ready")
		}
		if listening(ctx, endpoint, httpClient) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("server at %s not ready within %s", endpoint, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = nextDelay(delay)
	}
}

func listening(ctx context.Context, endpoint string, httpClient *http.Client) bool {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	response, err := httpClient.Do(request)
	if err != nil {
		return false
	}
	_ = response.Body.Close()
	return true
}
