package ingestion_engine

import (
	"bufio"
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// streamFragments cuts text into non-empty, trimmed lines, splitting lines longer
// than maxFragLen runes into several fragments.
func (i *DocumentIngestor) streamFragments(
	ctx context.Context,
	g *errgroup.Group,
	text string,
	maxFragLen int,
) <-chan string {
	out := make(chan string, 8)

	g.Go(func() error {
		defer close(out)

		sc := bufio.NewScanner(strings.NewReader(text))
		// Extracted PDFs often come back as a single huge line.
		sc.Buffer(make([]byte, 0, 64*1024), len(text)+1)

		emit := func(frag string) error {
			select {
			case out <- frag:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}

			runes := []rune(line)
			for len(runes) > maxFragLen {
				if err := emit(string(runes[:maxFragLen])); err != nil {
					return err
				}
				runes = runes[maxFragLen:]
			}
			if err := emit(string(runes)); err != nil {
				return err
			}
		}
		return sc.Err()
	})

	return out
}

// streamChunk groups incoming fragments into token-bounded chunks with optional overlap.
//
// frags:          upstream fragments channel.
// targetTokens:   approximate tokens per chunk.
// overlapTokens:  tokens to retain from the end of the previous chunk as seed of the next.
// out:            receive-only channel of chunk structs with Pos/Text/TokenCnt.
func (i *DocumentIngestor) streamChunk(
	ctx context.Context,
	g *errgroup.Group,
	frags <-chan string,
	targetTokens int,
	overlapTokens int,
) <-chan chunk {
	out := make(chan chunk, 8)

	g.Go(func() error {
		defer close(out)

		var (
			buf    []string
			tokSum int
			pos    int
			fresh  int // fragments added since the last emitted chunk
		)

		// flush emits the current buffer as a chunk and prepares the buffer for the next chunk,
		// preserving overlapTokens from the tail if configured.
		flush := func() error {
			if fresh == 0 {
				return nil
			}
			text := strings.Join(buf, "\n")
			ch := chunk{Pos: pos, Text: text, TokenCnt: tokSum}
			pos++
			fresh = 0

			select {
			case out <- ch:
			case <-ctx.Done():
				return ctx.Err()
			}
			i.log.Debugw("chunk emitted", "pos", ch.Pos, "tokens", tokSum, "fragments", len(buf))

			if overlapTokens > 0 {
				keep := []string{}
				remain := overlapTokens
				for j := len(buf) - 1; j >= 0 && remain > 0; j-- {
					t := approxTokens(buf[j])
					keep = append([]string{buf[j]}, keep...)
					remain -= t
				}
				buf = keep

				tokSum = 0
				for _, s := range buf {
					tokSum += approxTokens(s)
				}
			} else {
				buf = buf[:0]
				tokSum = 0
			}
			return nil
		}

		for frag := range frags {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			buf = append(buf, frag)
			tokSum += approxTokens(frag)
			fresh++

			if tokSum >= targetTokens {
				if err := flush(); err != nil {
					return err
				}
			}
		}

		// Emit remaining tail (if any new fragments arrived after the last chunk).
		return flush()
	})

	return out
}

// approxTokens is a cheap token estimator (~4 chars ≈ 1 token).
func approxTokens(s string) int {
	n := len([]rune(s))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}
