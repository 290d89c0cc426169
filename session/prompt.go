package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// CodePrompter obtains the one-time second-factor code from a human.
type CodePrompter interface {
	PromptCode(ctx context.Context) (string, error)
}

// ConsolePrompter asks on Out and reads one line from In.
type ConsolePrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p ConsolePrompter) PromptCode(ctx context.Context) (string, error) {
	fmt.Fprint(p.Out, "Enter the 6-digit 2FA code from your Pulse app: ")

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		code := strings.TrimSpace(r.line)
		if code == "" {
			if r.err != nil {
				return "", fmt.Errorf("read 2FA code: %w", r.err)
			}
			return "", fmt.Errorf("empty 2FA code")
		}
		return code, nil
	}
}
