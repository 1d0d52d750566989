package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CommandArgs holds parsed slash-command flags.
type CommandArgs struct {
	flags map[string]string
}

// ParseCommandArgs parses slash-command text of the form
// "--count 5 --user <@U123> --public". A flag without a value is boolean
// true. Values may be double-quoted to include spaces. Tokens that are not
// flags or flag values are rejected.
func ParseCommandArgs(text string) (*CommandArgs, error) {
	tokens, err := splitArgs(text)
	if err != nil {
		return nil, err
	}

	flags := make(map[string]string)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "--") || len(tok) == 2 {
			return nil, fmt.Errorf("unexpected argument %q", tok)
		}
		name := tok[2:]
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
			flags[name] = tokens[i+1]
			i++
			continue
		}
		flags[name] = "true"
	}
	return &CommandArgs{flags: flags}, nil
}

// splitArgs splits on whitespace while keeping double-quoted values intact.
func splitArgs(text string) ([]string, error) {
	var (
		tokens   []string
		current  strings.Builder
		inQuotes bool
		started  bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, current.String())
			current.Reset()
			started = false
		}
	}
	for _, r := range text {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote in arguments")
	}
	flush()
	return tokens, nil
}

// Has reports whether the flag was provided.
func (a *CommandArgs) Has(name string) bool {
	_, ok := a.flags[name]
	return ok
}

// String returns the flag's value, or "" if it was not provided.
func (a *CommandArgs) String(name string) string {
	return a.flags[name]
}

// Bool reports whether the flag was provided with a true value. A bare
// flag counts as true.
func (a *CommandArgs) Bool(name string) bool {
	v, ok := a.flags[name]
	return ok && v != "false"
}

// Count returns the flag parsed as a positive integer, or fallback when
// the flag is absent. A non-numeric or non-positive value is an error.
func (a *CommandArgs) Count(name string, fallback int) (int, error) {
	v, ok := a.flags[name]
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, v)
	}
	return n, nil
}

// Unknown returns the provided flag names that are not in allowed, sorted.
func (a *CommandArgs) Unknown(allowed ...string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		ok[name] = true
	}
	var unknown []string
	for name := range a.flags {
		if !ok[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
