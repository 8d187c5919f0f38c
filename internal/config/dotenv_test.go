package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	return path
}

func TestLoadDotEnvParsesAssignments(t *testing.T) {
	path := writeDotEnv(t, `
# comment line
DOTENV_TEST_PLAIN=hello
export DOTENV_TEST_EXPORTED=world
DOTENV_TEST_QUOTED="padded value "
DOTENV_TEST_SINGLE='with # inside'
DOTENV_TEST_COMMENTED=value # trailing note
not-a-pair
=no-key
`)
	keys := []string{
		"DOTENV_TEST_PLAIN", "DOTENV_TEST_EXPORTED", "DOTENV_TEST_QUOTED",
		"DOTENV_TEST_SINGLE", "DOTENV_TEST_COMMENTED",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	want := map[string]string{
		"DOTENV_TEST_PLAIN":     "hello",
		"DOTENV_TEST_EXPORTED":  "world",
		"DOTENV_TEST_QUOTED":    "padded value ",
		"DOTENV_TEST_SINGLE":    "with # inside",
		"DOTENV_TEST_COMMENTED": "value",
	}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := writeDotEnv(t, "DOTENV_TEST_EXISTING=from-file\n")
	t.Setenv("DOTENV_TEST_EXISTING", "from-env")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_EXISTING"); got != "from-env" {
		t.Errorf("DOTENV_TEST_EXISTING = %q, want the environment to win", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"))
	if err == nil {
		t.Error("LoadDotEnv() on a missing file expected an error")
	}
}
