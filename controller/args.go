package controller

import (
	"strings"

	"github.com/google/shlex"
)

// ParseArgs parses the tool argument micro-syntax into a key/value map.
//
// Tokens are whitespace separated with quoted segments ("..." or '...')
// kept together and stripped of their quotes. A token containing '=' is a
// key=value pair. When no key=value tokens are found the entire remainder
// becomes a single "raw_input" argument, so tools taking one free-form
// string do not require explicit key=value syntax.
//
//	action=write path=test.txt content="Hello world"
//	  -> {"action": "write", "path": "test.txt", "content": "Hello world"}
//	echo hello
//	  -> {"raw_input": "echo hello"}
func ParseArgs(s string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]string{}
	}

	tokens, err := shlex.Split(s)
	if err != nil {
		// Unbalanced quotes; fall back to plain whitespace splitting.
		tokens = strings.Fields(s)
	}

	args := map[string]string{}
	for _, token := range tokens {
		key, value, found := strings.Cut(token, "=")
		if !found || key == "" {
			continue
		}
		args[key] = trimQuotes(value)
	}
	if len(args) == 0 {
		return map[string]string{"raw_input": s}
	}
	return args
}

// trimQuotes strips one pair of surrounding quotes left behind when a quoted
// value was not separated from its key by whitespace.
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
