// Package prompt reads answers from the user on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Ask writes question to w and returns the next line read from r without
// its line ending.
func Ask(r io.Reader, w io.Writer, question string) (string, error) {
	if _, err := fmt.Fprint(w, question); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret asks on stderr and reads the answer from stdin without echo. When
// stdin is not a terminal it falls back to a plain line read.
func Secret(question string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return Ask(os.Stdin, os.Stderr, question)
	}

	fmt.Fprint(os.Stderr, question)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
