package gentexts

import (
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenPattern = regexp.MustCompile(`^[a-z]{3,10}$`)
	textPattern  = regexp.MustCompile(`^([a-z]{3,10} ){5,20}$`)
)

func TestToken(t *testing.T) {
	t.Parallel()

	g := NewSeeded(1)
	for i := 0; i < 1000; i++ {
		tok, err := g.Token()
		require.NoError(t, err)
		assert.Regexp(t, tokenPattern, tok)
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	g := NewSeeded(2)
	for i := 0; i < 500; i++ {
		text, err := g.Text()
		require.NoError(t, err)
		assert.Regexp(t, textPattern, text)

		tokens := Tokens(text)
		assert.GreaterOrEqual(t, len(tokens), MinTokens)
		assert.LessOrEqual(t, len(tokens), MaxTokens)
		assert.Equal(t, byte(' '), text[len(text)-1], "text must end with a separator")
	}
}

func TestTextList_FixedSeed(t *testing.T) {
	t.Parallel()

	g := NewSeeded(20240501)
	for i := 0; i < 200; i++ {
		var count int
		l, err := GenerateTextList(g, &count)
		require.NoError(t, err)

		assert.Equal(t, l.Len(), count)
		assert.GreaterOrEqual(t, count, MinTexts)
		assert.LessOrEqual(t, count, MaxTexts)

		for _, text := range l.Texts() {
			assert.Regexp(t, textPattern, text)
			for _, tok := range Tokens(text) {
				assert.Regexp(t, tokenPattern, tok)
			}
		}

		require.NoError(t, FreeTextList(l, count))
		assert.True(t, l.Released())
	}
}

func TestNewSeeded_Reproducible(t *testing.T) {
	t.Parallel()

	a, err := NewSeeded(7).TextList()
	require.NoError(t, err)
	defer a.Release()

	b, err := NewSeeded(7).TextList()
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, a.Texts(), b.Texts())
}

func TestGenerateTextList_NilCount(t *testing.T) {
	t.Parallel()

	l, err := GenerateTextList(NewSeeded(3), nil)
	require.NoError(t, err)
	assert.NotZero(t, l.Len())
	l.Release()
}

func TestGenerateTextList_FailureReportsZero(t *testing.T) {
	t.Parallel()

	count := -1
	l, err := GenerateTextList(NewSeeded(3, WithQuota(NewQuota(50))), &count)
	require.ErrorIs(t, err, ErrAllocation)
	assert.Nil(t, l)
	assert.Zero(t, count)
}

func TestNewConcurrent(t *testing.T) {
	t.Parallel()

	g := NewConcurrent()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l, err := g.TextList()
				if err != nil {
					errs <- err
					return
				}
				for _, text := range l.Texts() {
					if !textPattern.MatchString(text) {
						errs <- errors.New("malformed text: " + text)
					}
				}
				l.Release()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestNew_NilSource(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

// chi-square critical values at p = 0.0001
const (
	chiSquareDF7  = 29.88
	chiSquareDF25 = 59.97
)

func TestToken_Uniformity(t *testing.T) {
	t.Parallel()

	const samples = 10000

	g := NewSeeded(99)
	lengths := make([]int, MaxTokenLen+1)
	letters := make([]int, 26)
	totalLetters := 0

	for i := 0; i < samples; i++ {
		tok, err := g.Token()
		require.NoError(t, err)

		lengths[len(tok)]++
		for j := 0; j < len(tok); j++ {
			letters[tok[j]-'a']++
		}
		totalLetters += len(tok)
	}

	lengthBuckets := lengths[MinTokenLen:]
	for i, n := range lengthBuckets {
		assert.NotZero(t, n, "length %d never drawn", i+MinTokenLen)
	}
	for i, n := range letters {
		assert.NotZero(t, n, "letter %c never drawn", 'a'+i)
	}

	assert.Less(t, chiSquare(lengthBuckets, samples), chiSquareDF7, "token lengths are not uniform")
	assert.Less(t, chiSquare(letters, totalLetters), chiSquareDF25, "letters are not uniform")
}

func chiSquare(observed []int, total int) float64 {
	expected := float64(total) / float64(len(observed))

	var sum float64
	for _, o := range observed {
		d := float64(o) - expected
		sum += d * d / expected
	}

	return sum
}

func BenchmarkTextList(b *testing.B) {
	g := NewSeeded(1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		l, err := g.TextList()
		if err != nil {
			b.Fatal(err)
		}
		l.Release()
	}
}
