// Package htpasswd implements the credential file line format and the
// password hashing used by the credential store.
//
// A credential file is line-oriented text. Each entry is "username:hash".
// Blank lines and lines whose first non-blank character is '#' are ignored.
// Lines that do not look like an entry are skipped rather than treated as an
// error, matching what the common htpasswd tooling tolerates.
package htpasswd

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrEntryNotFound is returned by SetPassword when no line parses to the
// requested username.
var ErrEntryNotFound = errors.New("htpasswd: entry not found")

// Entry is a single username/hash pair parsed from a credential file.
type Entry struct {
	Name string
	Hash string
}

// Parse extracts the entries from file contents in file order.
//
// Blank lines and '#' comment lines are ignored. Each remaining line is split
// on the first ':' into username and hash; lines without a ':' or with an
// empty username are skipped silently. Duplicate usernames are all returned,
// in order, so callers that fold entries into a map get last-line-wins.
func Parse(contents []byte) []Entry {
	var entries []Entry
	for _, line := range strings.Split(string(contents), "\n") {
		name, hash, ok := parseLine(line)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Name: name, Hash: hash})
	}
	return entries
}

// parseLine splits one line into username and hash. ok is false for blank
// lines, comments, and lines not shaped like an entry.
func parseLine(line string) (name, hash string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	name, hash, found := strings.Cut(line, ":")
	if !found || name == "" {
		return "", "", false
	}
	return name, hash, true
}

// Append returns contents with a "name:hash" entry appended on its own line.
// A missing trailing newline in the existing content is repaired first so the
// new entry never glues onto the previous line.
func Append(contents []byte, name, hash string) []byte {
	out := make([]byte, 0, len(contents)+len(name)+len(hash)+2)
	out = append(out, contents...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, name...)
	out = append(out, ':')
	out = append(out, hash...)
	out = append(out, '\n')
	return out
}

// SetPassword rewrites the entry line for name with a fresh hash of password,
// leaving every other line untouched and preserving line order. The match on
// the username is case-sensitive and exact.
//
// Returns ErrEntryNotFound if no line parses to that username.
func SetPassword(contents []byte, name, password string) ([]byte, error) {
	hash, err := Hash(password)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(contents), "\n")
	found := false
	for i, line := range lines {
		lineName, _, ok := parseLine(line)
		if !ok || lineName != name {
			continue
		}
		lines[i] = name + ":" + hash
		found = true
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}

	out := []byte(strings.Join(lines, "\n"))
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

// ValidateName reports whether name can be written as an entry without
// corrupting the file format.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("username is empty")
	case !utf8.ValidString(name):
		return errors.New("username is not valid UTF-8")
	case strings.ContainsAny(name, ":\n\r"):
		return errors.New("username may not contain ':' or line breaks")
	case name != strings.TrimSpace(name):
		// Parsing trims the line, so such a name would never match its entry.
		return errors.New("username may not start or end with whitespace")
	case name[0] == '#':
		return errors.New("username may not start with '#'")
	}
	return nil
}
