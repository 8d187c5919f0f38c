package config

import (
	"bufio"
	"os"
	"strings"
)

// LoadDotEnv reads a .env file and exports its assignments into the
// process environment. Variables that are already set win, so the real
// environment always overrides the file.
//
// The format is the usual dotenv subset: KEY=VALUE per line, blank lines
// and #-comments skipped, optional shell-style "export " prefix, single
// or double quotes preserving inner whitespace, and trailing # comments
// stripped from unquoted values.
func LoadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err // a missing file is fine, the caller decides
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseDotEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// parseDotEnvLine splits one line into a key/value pair. ok is false for
// blank lines, comments and anything without a '='.
func parseDotEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, parseDotEnvValue(value), true
}

func parseDotEnvValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 {
		// A matched quote pair keeps everything inside it verbatim,
		// including leading/trailing spaces and '#'.
		if q := raw[0]; (q == '"' || q == '\'') && raw[len(raw)-1] == q {
			return raw[1 : len(raw)-1]
		}
	}
	// Unquoted values end at a trailing comment.
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
