package llm

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"searchagent/internal/domain"
)

const (
	// fallbackEncoding is used for models tiktoken does not know.
	fallbackEncoding = "cl100k_base"

	bpeFetchTimeout = 30 * time.Second
	maxBpeFileSize  = 16 * 1024 * 1024
)

// TiktokenCounter estimates prompt sizes with the BPE encoding of a model.
// Counting never touches the network: until Load succeeds the counter uses
// a runes/4 heuristic.
type TiktokenCounter struct {
	model  string
	loader tiktoken.BpeLoader

	mu  sync.RWMutex
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter returns a counter for model. Call Load to switch from
// the heuristic to exact counts.
func NewTiktokenCounter(model string) *TiktokenCounter {
	return &TiktokenCounter{
		model:  model,
		loader: &httpBpeLoader{client: &http.Client{Timeout: bpeFetchTimeout}},
	}
}

// Load resolves the model's encoding, fetching BPE ranks if tiktoken has not
// cached them. It returns when ctx is done even if the fetch is still running;
// the fetch itself is bounded by the loader's HTTP timeout.
func (c *TiktokenCounter) Load(ctx context.Context) error {
	type result struct {
		enc *tiktoken.Tiktoken
		err error
	}
	done := make(chan result, 1)

	installLoader.Do(func() { tiktoken.SetBpeLoader(sharedLoader) })
	sharedLoader.current.Store(&loaderBox{c.loader})

	go func() {
		enc, err := tiktoken.EncodingForModel(c.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding(fallbackEncoding)
		}
		done <- result{enc, err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("load %s encoding: %w", c.model, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("load %s encoding: %w", c.model, r.err)
		}
		c.mu.Lock()
		c.enc = r.enc
		c.mu.Unlock()
		return nil
	}
}

// Loaded reports whether exact counting is available.
func (c *TiktokenCounter) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enc != nil
}

// CountTokens implements domain.TokenCounter.
func (c *TiktokenCounter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	c.mu.RLock()
	enc := c.enc
	c.mu.RUnlock()
	if enc == nil {
		return estimateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

func estimateTokens(text string) int {
	n := utf8.RuneCountInString(text) / 4
	if n == 0 {
		return 1
	}
	return n
}

// tiktoken holds one process-wide loader, so it is installed once and the
// counter being loaded swaps the delegate.
var (
	installLoader sync.Once
	sharedLoader  = &delegatingLoader{}
)

type loaderBox struct{ tiktoken.BpeLoader }

type delegatingLoader struct {
	current atomic.Pointer[loaderBox]
}

func (d *delegatingLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	return d.current.Load().LoadTiktokenBpe(file)
}

// httpBpeLoader fetches tiktoken rank files with a bounded client. Each line
// of a rank file is "<base64 token> <rank>".
type httpBpeLoader struct {
	client *http.Client
}

func (l *httpBpeLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	resp, err := l.client.Get(file)
	if err != nil {
		return nil, fmt.Errorf("fetch bpe ranks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bpe ranks: status %d", resp.StatusCode)
	}

	ranks := make(map[string]int)
	sc := bufio.NewScanner(io.LimitReader(resp.Body, maxBpeFileSize))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		tok, rank, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("malformed bpe line %q", line)
		}
		raw, err := base64.StdEncoding.DecodeString(tok)
		if err != nil {
			return nil, fmt.Errorf("decode bpe token %q: %w", tok, err)
		}
		n, err := strconv.Atoi(rank)
		if err != nil {
			return nil, fmt.Errorf("parse bpe rank %q: %w", rank, err)
		}
		ranks[string(raw)] = n
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read bpe ranks: %w", err)
	}
	return ranks, nil
}

var (
	_ domain.TokenCounter = (*TiktokenCounter)(nil)
	_ tiktoken.BpeLoader  = (*httpBpeLoader)(nil)
)
