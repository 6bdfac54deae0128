package protocol

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(r *Reassembler, chunks ...string) []string {
	var out []string
	for _, c := range chunks {
		for _, f := range r.Feed([]byte(c)) {
			out = append(out, string(f))
		}
	}
	return out
}

func TestReassembler_SplitAcrossChunks(t *testing.T) {
	r := NewReassembler(DefaultLimits())

	got := collect(r, `{"T":1`, `05}`+`{"T":104,"x":1}`)

	assert.Equal(t, []string{`{"T":105}`, `{"T":104,"x":1}`}, got)
	assert.Zero(t, r.Buffered())
}

func TestReassembler_PartialFrameIsKept(t *testing.T) {
	r := NewReassembler(DefaultLimits())

	assert.Empty(t, collect(r, `{"T":1051,"x":`))
	assert.Equal(t, len(`{"T":1051,"x":`), r.Buffered())

	assert.Equal(t, []string{`{"T":1051,"x":3}`}, collect(r, `3}`))
}

func TestReassembler_ChunkingInvariance(t *testing.T) {
	stream := `{"T":1051,"x":235,"y":0,"z":234,"t":3.14,"b":0,"s":0,"e":0,"torB":1,"torS":2,"torE":3,"torH":4}` +
		"\r\n" + `{"T":105,}` + `{"T":104,"x":1,"y":2}` + `garbage}` + `{"T":1001,"torH":-7.5}` + `{"T":10`

	whole := collect(NewReassembler(DefaultLimits()), stream)
	require.Len(t, whole, 3)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var chunks []string
		rest := stream
		for len(rest) > 0 {
			n := 1 + rng.Intn(len(rest))
			if n > 9 {
				n = 1 + rng.Intn(9)
			}
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}
		assert.Equal(t, whole, collect(NewReassembler(DefaultLimits()), chunks...), "chunks %q", chunks)
	}
}

func TestReassembler_MalformedFrameDropped(t *testing.T) {
	r := NewReassembler(DefaultLimits())
	var errs []error
	r.OnError = func(err error) { errs = append(errs, err) }

	got := collect(r, `{"T":105,}{"T":1051,"x":1}`)

	assert.Equal(t, []string{`{"T":1051,"x":1}`}, got)
	require.Len(t, errs, 1)
	var perr *FrameParseError
	require.True(t, errors.As(errs[0], &perr))
	assert.Equal(t, `{"T":105,}`, string(perr.Raw))
}

func TestReassembler_NestedObjectIsMisSplit(t *testing.T) {
	r := NewReassembler(DefaultLimits())
	var errs int
	r.OnError = func(error) { errs++ }

	// First '}' ends the frame even inside a nested object.
	got := collect(r, `{"T":1,"o":{"a":1}}{"T":2}`)

	assert.Equal(t, []string{`{"T":2}`}, got)
	assert.Equal(t, 2, errs)
}

func TestReassembler_Overflow(t *testing.T) {
	r := NewReassembler(Limits{MaxPending: 16})
	var errs []error
	r.OnError = func(err error) { errs = append(errs, err) }

	assert.Empty(t, collect(r, strings.Repeat("x", 17)))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrFrameTooLarge)
	assert.Zero(t, r.Buffered())

	// The oversize frame runs to the next '}'; the stream recovers after it.
	assert.Empty(t, collect(r, `{"T":105}`))
	assert.Len(t, errs, 1)
	assert.Equal(t, []string{`{"T":105}`}, collect(r, `{"T":105}`))
}

func TestReassembler_OversizeFrameChunkingInvariance(t *testing.T) {
	limits := Limits{MaxPending: 1024}
	big := `{"T":1051,"x":1` + strings.Repeat(" ", 4096) + `}`
	stream := `{"T":105}` + big + `{"T":1051,"y":2}`

	feed := func(chunkSize int) ([]string, int) {
		r := NewReassembler(limits)
		var tooLarge int
		r.OnError = func(err error) {
			if errors.Is(err, ErrFrameTooLarge) {
				tooLarge++
			}
		}
		var out []string
		for rest := stream; len(rest) > 0; {
			n := min(chunkSize, len(rest))
			out = append(out, collect(r, rest[:n])...)
			rest = rest[n:]
		}
		return out, tooLarge
	}

	want := []string{`{"T":105}`, `{"T":1051,"y":2}`}
	for _, size := range []int{len(stream), 1024, 100, 7, 1} {
		got, tooLarge := feed(size)
		assert.Equal(t, want, got, "chunk size %d", size)
		assert.Equal(t, 1, tooLarge, "chunk size %d", size)
	}
}

func TestReassembler_Compaction(t *testing.T) {
	r := NewReassembler(Limits{})
	frame := `{"T":1051,"x":1}`

	// Feed one byte at a time; the backing slice must stay small.
	for i := 0; i < 500; i++ {
		var n int
		for j := 0; j < len(frame); j++ {
			n += len(r.Feed([]byte{frame[j]}))
		}
		require.Equal(t, 1, n)
	}
	assert.LessOrEqual(t, cap(r.buf), 4*len(frame))
}

func TestReassembler_NextWithoutValidation(t *testing.T) {
	r := NewReassembler(DefaultLimits())
	_, _ = r.Write([]byte(`not json}{"T":105}`))

	raw, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, "not json}", string(raw))

	raw, ok = r.Next()
	require.True(t, ok)
	assert.Equal(t, `{"T":105}`, string(raw))

	_, ok = r.Next()
	assert.False(t, ok)
}
