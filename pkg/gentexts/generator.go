package gentexts

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/bytedance/gopkg/lang/fastrand"
	"github.com/bytedance/gopkg/lang/mcache"
)

// Inclusive bounds for every random draw
const (
	MinTokenLen = 3
	MaxTokenLen = 10

	MinTokens = 5
	MaxTokens = 20

	MinTexts = 5
	MaxTexts = 8
)

// maxTextBytes is the longest possible text: every token at max length plus its separator
const maxTextBytes = MaxTokens * (MaxTokenLen + 1)

// Generator produces random tokens, texts and text lists from a random
// source it owns. It keeps no state besides that source and an optional
// Quota, so it is safe for concurrent use only when the source is.
type Generator struct {
	rand  *rand.Rand
	quota *Quota
}

// Option configures a Generator
type Option func(*Generator)

// WithQuota charges every buffer the generator produces to q
func WithQuota(q *Quota) Option {
	return func(g *Generator) {
		g.quota = q
	}
}

// New creates a generator drawing from r
func New(r *rand.Rand, opts ...Option) *Generator {
	if r == nil {
		panic("gentexts: nil random source")
	}

	g := &Generator{rand: r}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// NewSeeded creates a deterministic generator. Two generators with the same
// seed produce the same sequence.
func NewSeeded(seed uint64, opts ...Option) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), opts...)
}

// fastSource adapts the process-wide lock-free fastrand to rand.Source
type fastSource struct{}

func (fastSource) Uint64() uint64 { return fastrand.Uint64() }

// NewConcurrent creates a generator that can be shared between goroutines
// without external locking. Its output cannot be reproduced.
func NewConcurrent(opts ...Option) *Generator {
	return New(rand.New(fastSource{}), opts...)
}

// Quota returns the quota the generator charges, or nil
func (g *Generator) Quota() *Quota {
	return g.quota
}

// between draws uniformly from [lo, hi]
func (g *Generator) between(lo, hi int) int {
	return lo + g.rand.IntN(hi-lo+1)
}

// Token generates a single token of MinTokenLen..MaxTokenLen lowercase letters
func (g *Generator) Token() (string, error) {
	n := g.between(MinTokenLen, MaxTokenLen)
	if err := g.quota.alloc(n); err != nil {
		return "", err
	}
	defer g.quota.free(n)

	buf := make([]byte, n)
	g.fillToken(buf)

	return string(buf), nil
}

// Text generates MinTokens..MaxTokens tokens, each followed by one space.
// The returned string belongs to the caller; it is only charged to the
// quota while it is being built.
func (g *Generator) Text() (string, error) {
	text, err := g.buildText()
	if err != nil {
		return "", err
	}
	g.quota.free(len(text))

	return text, nil
}

// TextList generates MinTexts..MaxTexts texts. The list stays charged to the
// quota until Release is called. On failure every buffer opened by the call
// has already been freed and the list is nil.
func (g *Generator) TextList() (*TextList, error) {
	count := g.between(MinTexts, MaxTexts)
	if err := g.quota.alloc(count * SlotSize); err != nil {
		return nil, err
	}

	l := &TextList{
		texts: make([]string, 0, count),
		slots: count,
		quota: g.quota,
	}
	for i := 0; i < count; i++ {
		text, err := g.buildText()
		if err != nil {
			l.Release()
			return nil, err
		}
		l.texts = append(l.texts, text)
	}

	return l, nil
}

// buildText returns a text whose buffer is still charged to the quota
func (g *Generator) buildText() (string, error) {
	n := g.between(MinTokens, MaxTokens)
	if err := g.quota.alloc(0); err != nil {
		return "", err
	}

	scratch := mcache.Malloc(0, maxTextBytes)
	defer mcache.Free(scratch)

	buf := scratch
	for i := 0; i < n; i++ {
		var err error
		if buf, err = g.appendToken(buf); err != nil {
			g.quota.free(len(buf))
			return "", err
		}
	}

	return string(buf), nil
}

// appendToken grows buf by one token and its trailing space
func (g *Generator) appendToken(buf []byte) ([]byte, error) {
	n := g.between(MinTokenLen, MaxTokenLen)
	if err := g.quota.grow(n + 1); err != nil {
		return buf, err
	}

	start := len(buf)
	buf = slices.Grow(buf, n+1)[:start+n]
	g.fillToken(buf[start:])

	return append(buf, ' '), nil
}

func (g *Generator) fillToken(b []byte) {
	for i := range b {
		b[i] = byte('a' + g.between(0, 25))
	}
}

// GenerateTextList generates a list and, when outCount is not nil, stores
// the number of texts in it (0 on failure).
func GenerateTextList(g *Generator, outCount *int) (*TextList, error) {
	l, err := g.TextList()
	if outCount != nil {
		*outCount = l.Len()
	}
	if err != nil {
		return nil, err
	}

	return l, nil
}

// Tokens splits a text back into its tokens
func Tokens(text string) []string {
	return strings.Fields(text)
}
