// Package dict reads banned-phrase dictionaries from their sources and keeps the
// active dictionary of a censor.Censor up to date.
package dict

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

// Source returns the full list of banned phrases.
type Source interface {
	Words(ctx context.Context) ([]string, error)
}

// FileSource reads one phrase per line. Blank lines and lines starting with '#' are skipped.
type FileSource struct {
	Path string
}

func (s FileSource) Words(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readLines(f)
}

func (s FileSource) String() string {
	return "file:" + s.Path
}

// Word is an entry of a JSON dictionary.
type Word struct {
	Text string `json:"text"`
}

// JSONSource reads a JSON array of Word objects.
type JSONSource struct {
	Path string
}

func (s JSONSource) Words(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}

	var entries []Word
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.Path, err)
	}

	words := make([]string, 0, len(entries))
	for _, e := range entries {
		if w := strings.TrimSpace(e.Text); w != "" {
			words = append(words, w)
		}
	}

	return words, nil
}

func (s JSONSource) String() string {
	return "json:" + s.Path
}

// HTTPSource downloads a line-based dictionary.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Words(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, s.URL)
	}

	return readLines(resp.Body)
}

func (s HTTPSource) String() string {
	return s.URL
}

// Static serves a fixed list of phrases.
type Static []string

func (s Static) Words(ctx context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

func readLines(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			words = append(words, line)
		}
	}

	return words, scanner.Err()
}
