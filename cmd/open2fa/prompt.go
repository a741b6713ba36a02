package main

import (
	"fmt"
	"strings"
)

// confirm prints prompt and reads one line. Only "y" or "yes" accept;
// anything else, including EOF, declines.
func (e *cliEnv) confirm(prompt string) bool {
	fmt.Fprint(e.out, prompt)
	line, err := e.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(e.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
