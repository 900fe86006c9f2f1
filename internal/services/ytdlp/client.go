package ytdlp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cratedig/internal/fileutil"
	"cratedig/internal/track"
)

const defaultSearchLimit = 5

// stderrTailLines bounds how much tool output is kept for error messages.
const stderrTailLines = 20

// Searcher finds candidate videos for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]track.Candidate, error)
}

// Downloader fetches a video's audio track to a local file.
type Downloader interface {
	Download(ctx context.Context, url, finalPath string) error
}

// Executor abstracts command execution for testability. Stdout lines are
// forwarded to onStdout; stderr is collected into the returned error when the
// command fails.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary       string
	timeout      time.Duration
	audioFormat  string
	audioQuality string
	exec         Executor
}

var (
	_ Searcher   = (*Client)(nil)
	_ Downloader = (*Client)(nil)
)

// New constructs a yt-dlp client.
func New(binary string, timeoutSeconds int, audioFormat, audioQuality string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	audioFormat = strings.TrimSpace(audioFormat)
	if audioFormat == "" {
		audioFormat = "mp3"
	}
	audioQuality = strings.TrimSpace(audioQuality)
	if audioQuality == "" {
		audioQuality = "320K"
	}
	client := &Client{
		binary:       binary,
		timeout:      time.Duration(timeoutSeconds) * time.Second,
		audioFormat:  audioFormat,
		audioQuality: audioQuality,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type videoInfo struct {
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`
	Uploader   string  `json:"uploader"`
	ViewCount  int64   `json:"view_count"`
}

func (v videoInfo) candidate() track.Candidate {
	return track.Candidate{
		Title:           v.Title,
		DurationSeconds: v.Duration,
		URL:             v.WebpageURL,
		Uploader:        v.Uploader,
		ViewCount:       v.ViewCount,
	}
}

// Search runs a ytsearch query and returns the parsed candidates in result
// order. Lines that are not JSON objects are skipped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]track.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	searchCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"--dump-json",
		"--no-download",
		"--default-search", fmt.Sprintf("ytsearch%d:", limit),
		"--quiet",
		query,
	}

	var lines []string
	if err := c.exec.Run(searchCtx, c.binary, args, func(line string) {
		lines = append(lines, line)
	}); err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w", err)
	}

	candidates := make([]track.Candidate, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var payload videoInfo
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			continue
		}
		candidates = append(candidates, payload.candidate())
	}
	return candidates, nil
}

// Download extracts the audio of url to finalPath. yt-dlp writes through an
// extension template, so success is gated on the final file existing with
// content rather than on the exit code alone.
func (c *Client) Download(ctx context.Context, url, finalPath string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("video url required")
	}
	finalPath = strings.TrimSpace(finalPath)
	if finalPath == "" {
		return errors.New("output path required")
	}

	downloadCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		downloadCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"--extract-audio",
		"--audio-format", c.audioFormat,
		"--audio-quality", c.audioQuality,
		"--output", outputTemplate(finalPath),
		"--quiet",
		"--no-warnings",
		url,
		"--add-metadata",
		"--metadata-from-title", "%(artist)s - %(title)s",
	}

	if err := c.exec.Run(downloadCtx, c.binary, args, nil); err != nil {
		return fmt.Errorf("yt-dlp download: %w", err)
	}

	if !fileutil.NonEmptyFile(finalPath) {
		return fmt.Errorf("yt-dlp produced no output at %s", finalPath)
	}
	return nil
}

// Version reports the installed yt-dlp version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.exec.Run(ctx, c.binary, []string{"--version"}, func(line string) {
		if version == "" {
			version = strings.TrimSpace(line)
		}
	}); err != nil {
		return "", fmt.Errorf("yt-dlp version: %w", err)
	}
	if version == "" {
		return "", errors.New("yt-dlp reported no version")
	}
	return version, nil
}

func outputTemplate(finalPath string) string {
	ext := filepath.Ext(finalPath)
	if ext == "" {
		return finalPath + ".%(ext)s"
	}
	return strings.TrimSuffix(finalPath, ext) + ".%(ext)s"
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	var tail stderrTail

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, func(line string) {
		if onStdout != nil {
			onStdout(line)
		}
	})
	go scan(stderr, tail.append)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if detail := tail.String(); detail != "" {
			return fmt.Errorf("wait command: %w: %s", err, detail)
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// stderrTail keeps the most recent stderr lines for error reporting.
type stderrTail struct {
	mu    sync.Mutex
	lines []string
}

func (t *stderrTail) append(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > stderrTailLines {
		t.lines = t.lines[len(t.lines)-stderrTailLines:]
	}
}

func (t *stderrTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "; ")
}
