// Package confirm implements the yes/no gates that pause a run until the
// operator answers.
package confirm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Confirmer answers a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Func adapts a function to the Confirmer interface.
type Func func(prompt string) (bool, error)

func (f Func) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

// Auto answers every question with the same value.
type Auto bool

func (a Auto) Confirm(string) (bool, error) {
	return bool(a), nil
}

// KeyConfirmer waits for a single y/Y or n/N key. Every other key is ignored.
// When in is a terminal it is switched to raw mode so no Enter is needed.
type KeyConfirmer struct {
	in  io.Reader
	out io.Writer
	fd  int
	tty bool
}

// NewKeyConfirmer reads keys from in and writes prompts to out. Prompts are
// not written when out is nil.
func NewKeyConfirmer(in io.Reader, out io.Writer) *KeyConfirmer {
	k := &KeyConfirmer{in: in, out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		k.fd = int(f.Fd())
		k.tty = true
	}
	return k
}

// Stdin returns a confirmer reading the process standard input. It prints
// nothing; callers log the prompt themselves.
func Stdin() *KeyConfirmer {
	return NewKeyConfirmer(os.Stdin, nil)
}

func (k *KeyConfirmer) Confirm(prompt string) (bool, error) {
	if k.out != nil && prompt != "" {
		fmt.Fprintln(k.out, prompt)
	}

	if k.tty {
		state, err := term.MakeRaw(k.fd)
		if err != nil {
			return false, fmt.Errorf("failed to switch terminal to raw mode: %w", err)
		}
		defer term.Restore(k.fd, state)
	}

	return readAnswer(k.in)
}

func readAnswer(in io.Reader) (bool, error) {
	var buf [1]byte
	for {
		n, err := in.Read(buf[:])
		if n == 1 {
			switch buf[0] {
			case 'y', 'Y':
				return true, nil
			case 'n', 'N':
				return false, nil
			case 3: // Ctrl-C in raw mode
				return false, ErrInterrupted
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, fmt.Errorf("failed to read answer: %w", err)
		}
	}
}
