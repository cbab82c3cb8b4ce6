package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio reads lines from in and writes to out.
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // дескриптор терминала для ReadPassword, -1 если ввод не терминал
}

// NewStdio returns an IO over os.Stdin and os.Stdout.
func NewStdio() IO {
	s := NewStreams(os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		s.fd = fd
	}
	return s
}

// NewStreams returns an IO over arbitrary streams. Passwords are read as
// plain lines.
func NewStreams(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		in:  bufio.NewReader(in),
		out: out,
		fd:  -1,
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	if s.fd < 0 {
		return s.ReadInput(prompt)
	}
	s.Printf("%s", prompt)
	pwBytes, err := term.ReadPassword(s.fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pwBytes)), nil
}
