// Package digits validates console input that must consist of ASCII digits only.
package digits

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// RejectMessage is printed for every line containing a non-digit character.
const RejectMessage = "Invalid input. Please enter a number."

// IsDigits reports whether every character of s is '0' through '9'. The empty
// string has no offending character and is accepted.
func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Run reads lines from in until one is accepted, writing prompts and
// rejections to out. The accepted line is echoed and returned. If in ends
// before a line is accepted, Run returns io.EOF.
func Run(in io.Reader, out io.Writer, prompt string) (string, error) {
	reader := bufio.NewReader(in)
	for {
		if prompt != "" {
			fmt.Fprint(out, prompt)
		}
		raw, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", errors.Wrap(err, "read input")
		}
		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
		if !IsDigits(line) {
			fmt.Fprintln(out, RejectMessage)
			continue
		}
		fmt.Fprintf(out, "You entered: %s\n", line)
		return line, nil
	}
}
