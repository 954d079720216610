package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/netsync-network/netsync/pkg/model"
	"github.com/netsync-network/netsync/pkg/util"
)

// Params configures session acquisition.
type Params struct {
	Host           string
	Port           int
	Platform       model.Platform
	Creds          model.Credentials
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

func (p *Params) applyDefaults() {
	if p.Port == 0 {
		p.Port = 22
	}
	if p.ConnectTimeout == 0 {
		p.ConnectTimeout = 15 * time.Second
	}
	if p.ReadTimeout == 0 {
		p.ReadTimeout = 30 * time.Second
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = 3
	}
	if p.RetryDelay == 0 {
		p.RetryDelay = 2 * time.Second
	}
}

var passwordPrompt = regexp.MustCompile(`(?i)password:\s*$`)

// Session is one authenticated interactive connection to a device.
type Session struct {
	host        string
	dialect     Dialect
	readTimeout time.Duration
	hostname    string

	client *ssh.Client
	shell  *ssh.Session
	stdin  io.WriteCloser
	out    chan []byte
	closed bool
}

// Open connects, authenticates, identifies the hostname from the
// prompt, escalates privilege when a secret is given, and disables
// paging. Timeouts and transport errors are retried up to MaxRetries
// with a fixed delay; authentication failures are surfaced immediately.
func Open(ctx context.Context, params Params) (*Session, error) {
	params.applyDefaults()

	var s *Session
	err := util.Retry(ctx, params.MaxRetries, params.RetryDelay, func() error {
		var attemptErr error
		s, attemptErr = open(ctx, params)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func open(ctx context.Context, params Params) (*Session, error) {
	addr := net.JoinHostPort(params.Host, fmt.Sprintf("%d", params.Port))
	config := &ssh.ClientConfig{
		User: params.Creds.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(params.Creds.Password),
			ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = params.Creds.Password
				}
				return answers, nil
			}),
		},
		// Device fleets rotate host keys on RMA; pinning is managed
		// out of band.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         params.ConnectTimeout,
	}

	conn, err := net.DialTimeout("tcp", addr, params.ConnectTimeout)
	if err != nil {
		if isTimeout(err) {
			return nil, util.NewTimeoutError(params.Host, "connect")
		}
		return nil, util.NewConnectionError(params.Host, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		if isAuthFailure(err) {
			return nil, util.NewAuthenticationError(params.Host, params.Creds.Username)
		}
		if isTimeout(err) {
			return nil, util.NewTimeoutError(params.Host, "connect")
		}
		return nil, util.NewConnectionError(params.Host, err)
	}

	s := &Session{
		host:        params.Host,
		dialect:     DialectFor(params.Platform),
		readTimeout: params.ReadTimeout,
		client:      ssh.NewClient(sshConn, chans, reqs),
		out:         make(chan []byte, 64),
	}
	if err := s.startShell(); err != nil {
		s.Close()
		return nil, util.NewConnectionError(params.Host, err)
	}

	// Errors past this point happened after a successful connect and
	// are not retried within the session.
	if err := s.setup(ctx, params.Creds.Secret); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) startShell() error {
	shell, err := s.client.NewSession()
	if err != nil {
		return err
	}
	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 115200,
		ssh.TTY_OP_OSPEED: 115200,
	}
	if err := shell.RequestPty("vt100", 80, 512, modes); err != nil {
		shell.Close()
		return err
	}
	stdin, err := shell.StdinPipe()
	if err != nil {
		shell.Close()
		return err
	}
	stdout, err := shell.StdoutPipe()
	if err != nil {
		shell.Close()
		return err
	}
	if err := shell.Shell(); err != nil {
		shell.Close()
		return err
	}
	s.shell = shell
	s.stdin = stdin

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				s.out <- chunk
			}
			if err != nil {
				close(s.out)
				return
			}
		}
	}()
	return nil
}

// setup consumes the login banner, records the hostname, escalates
// privilege, and disables paging.
func (s *Session) setup(ctx context.Context, secret string) error {
	banner, err := s.readUntilPrompt(ctx)
	if err != nil {
		return err
	}
	s.hostname = hostnameFromPrompt(lastLine(banner))

	if secret != "" && s.dialect.EnableCommand != "" && strings.HasSuffix(strings.TrimSpace(lastLine(banner)), ">") {
		if err := s.enable(ctx, secret); err != nil {
			return err
		}
	}

	if s.dialect.DisablePaging != "" {
		if _, err := s.Send(ctx, s.dialect.DisablePaging); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) enable(ctx context.Context, secret string) error {
	if _, err := io.WriteString(s.stdin, s.dialect.EnableCommand+"\n"); err != nil {
		return util.NewConnectionError(s.host, err)
	}
	// Wait for the password prompt, then answer it.
	if _, err := s.readUntil(ctx, passwordPrompt); err != nil {
		return err
	}
	if _, err := io.WriteString(s.stdin, secret+"\n"); err != nil {
		return util.NewConnectionError(s.host, err)
	}
	out, err := s.readUntilPrompt(ctx)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(strings.TrimSpace(lastLine(out)), "#") {
		return util.NewAuthenticationError(s.host, "enable")
	}
	s.hostname = hostnameFromPrompt(lastLine(out))
	return nil
}

// Send runs one command and returns its output with the echoed command
// and the trailing prompt stripped. Commands on a session are strictly
// sequential.
func (s *Session) Send(ctx context.Context, command string) (string, error) {
	if s.closed {
		return "", util.NewConnectionError(s.host, errors.New("session closed"))
	}
	if _, err := io.WriteString(s.stdin, command+"\n"); err != nil {
		return "", util.NewConnectionError(s.host, err)
	}
	out, err := s.readUntilPrompt(ctx)
	if err != nil {
		return "", err
	}
	out = stripEcho(out, command)
	if rejected(out) {
		return "", util.NewCommandError(s.host, command, out)
	}
	return out, nil
}

// Hostname returns the device's canonical hostname as identified from
// the prompt at login.
func (s *Session) Hostname() string { return s.hostname }

// Close releases the shell and the underlying socket. Safe to call on
// every exit path, including after a failed setup.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.shell != nil {
		s.shell.Close()
	}
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Session) readUntilPrompt(ctx context.Context) (string, error) {
	return s.readUntil(ctx, s.dialect.PromptPattern)
}

// readUntil accumulates output until the pattern matches the tail of
// the buffer. The context is checked between reads, so cancellation
// takes effect when the current command finishes or the next timeout
// tick fires.
func (s *Session) readUntil(ctx context.Context, pattern *regexp.Regexp) (string, error) {
	var b strings.Builder
	timer := time.NewTimer(s.readTimeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return b.String(), util.ErrCancelled
		case <-timer.C:
			return b.String(), util.NewTimeoutError(s.host, "read")
		case chunk, ok := <-s.out:
			if !ok {
				return b.String(), util.NewConnectionError(s.host, errors.New("connection closed by device"))
			}
			b.Write(chunk)
			if pattern.MatchString(tail(b.String())) {
				return b.String(), nil
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(s.readTimeout)
		}
	}
}

// tail returns the last few lines of the buffer, enough for any prompt.
func tail(s string) string {
	const n = 256
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n \t"), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// hostnameFromPrompt extracts the hostname from a CLI prompt line:
// "sw1#" → "sw1", "sw1(config)#" → "sw1", "admin@edge1>" → "edge1".
func hostnameFromPrompt(prompt string) string {
	p := strings.TrimSpace(prompt)
	p = strings.TrimRight(p, ">#%$ ")
	if i := strings.IndexByte(p, '('); i > 0 {
		p = p[:i]
	}
	if i := strings.IndexByte(p, '@'); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// stripEcho removes the echoed command from the head of the output and
// the prompt from its tail.
func stripEcho(out, command string) string {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	start := 0
	if len(lines) > 0 && strings.Contains(lines[0], command) {
		start = 1
	}
	end := len(lines)
	if end > start && (iosPrompt.MatchString(lines[end-1]) || junosPrompt.MatchString(lines[end-1])) {
		end--
	}
	return strings.TrimRight(strings.Join(lines[start:end], "\n"), "\r\n ")
}

// rejected reports whether the device refused the command.
func rejected(out string) bool {
	head := strings.TrimSpace(out)
	if i := strings.IndexByte(head, '\n'); i > 0 {
		head = head[:i]
	}
	head = strings.TrimSpace(head)
	return strings.HasPrefix(head, "% Invalid input") ||
		strings.HasPrefix(head, "% Incomplete command") ||
		strings.HasPrefix(head, "% Ambiguous command") ||
		strings.HasPrefix(head, "ERROR:") ||
		strings.HasPrefix(head, "syntax error")
}

func isAuthFailure(err error) bool {
	return err != nil && strings.Contains(err.Error(), "unable to authenticate")
}

func isTimeout(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "i/o timeout")
}
