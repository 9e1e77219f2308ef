package config

import (
	"testing"
)

func TestSubstituteEnvVars_Simple(t *testing.T) {
	t.Setenv("SYNCTOWER_TEST_SIMPLE", "hello")

	content, missing := substituteEnvVars("value = ${SYNCTOWER_TEST_SIMPLE}")
	if content != "value = hello" {
		t.Errorf("expected 'value = hello', got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars, got %v", missing)
	}
}

func TestSubstituteEnvVars_Missing(t *testing.T) {
	// Never set anywhere
	content, missing := substituteEnvVars("value = ${SYNCTOWER_TEST_NONEXISTENT_12345}")
	if content != "value = ${SYNCTOWER_TEST_NONEXISTENT_12345}" {
		t.Errorf("expected unchanged, got %q", content)
	}
	if len(missing) != 1 || missing[0] != "SYNCTOWER_TEST_NONEXISTENT_12345" {
		t.Errorf("expected [SYNCTOWER_TEST_NONEXISTENT_12345], got %v", missing)
	}
}

func TestSubstituteEnvVars_SetButEmpty(t *testing.T) {
	t.Setenv("SYNCTOWER_TEST_EMPTY", "")

	content, missing := substituteEnvVars("value = '${SYNCTOWER_TEST_EMPTY}'")
	if content != "value = ''" {
		t.Errorf("expected empty substitution, got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("set-but-empty is not missing, got %v", missing)
	}
}

func TestSubstituteEnvVars_Default(t *testing.T) {
	t.Setenv("SYNCTOWER_TEST_DEFAULT", "")

	content, missing := substituteEnvVars("value = ${SYNCTOWER_TEST_DEFAULT:-http://localhost:8000}")
	if content != "value = http://localhost:8000" {
		t.Errorf("expected default value, got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars with default, got %v", missing)
	}
}

func TestSubstituteEnvVars_EmptyDefault(t *testing.T) {
	content, missing := substituteEnvVars(`base_url = "${SYNCTOWER_TEST_NONEXISTENT_EMPTY:-}"`)
	if content != `base_url = ""` {
		t.Errorf("expected empty default, got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars, got %v", missing)
	}
}

func TestSubstituteEnvVars_DefaultOverriddenByEnv(t *testing.T) {
	t.Setenv("SYNCTOWER_TEST_OVERRIDE", "from_env")

	content, missing := substituteEnvVars("value = ${SYNCTOWER_TEST_OVERRIDE:-default}")
	if content != "value = from_env" {
		t.Errorf("expected 'value = from_env', got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars, got %v", missing)
	}
}

func TestSubstituteEnvVars_Required(t *testing.T) {
	t.Setenv("SYNCTOWER_TEST_REQUIRED", "")

	content, missing := substituteEnvVars("value = ${SYNCTOWER_TEST_REQUIRED:?catalog URL is required}")
	if content != "value = ${SYNCTOWER_TEST_REQUIRED:?catalog URL is required}" {
		t.Errorf("expected unchanged, got %q", content)
	}
	if len(missing) != 1 || missing[0] != "SYNCTOWER_TEST_REQUIRED: catalog URL is required" {
		t.Errorf("expected error message, got %v", missing)
	}
}

func TestSubstituteEnvVars_Multiple(t *testing.T) {
	t.Setenv("SYNCTOWER_TEST_ONE", "one")
	t.Setenv("SYNCTOWER_TEST_THREE", "")

	content, missing := substituteEnvVars("${SYNCTOWER_TEST_ONE} ${SYNCTOWER_TEST_NONEXISTENT_TWO} ${SYNCTOWER_TEST_THREE:-three}")
	if content != "one ${SYNCTOWER_TEST_NONEXISTENT_TWO} three" {
		t.Errorf("expected 'one ${SYNCTOWER_TEST_NONEXISTENT_TWO} three', got %q", content)
	}
	if len(missing) != 1 || missing[0] != "SYNCTOWER_TEST_NONEXISTENT_TWO" {
		t.Errorf("expected [SYNCTOWER_TEST_NONEXISTENT_TWO], got %v", missing)
	}
}

func TestSubstituteEnvVars_IgnoresComments(t *testing.T) {
	input := "# ${SYNCTOWER_TEST_NONEXISTENT_12345} and ${VAR:?message}\n" +
		"value = \"x\" # see ${SYNCTOWER_TEST_NONEXISTENT_12345}"

	content, missing := substituteEnvVars(input)
	if content != input {
		t.Errorf("expected comments unchanged, got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars, got %v", missing)
	}
}

func TestSubstituteEnvVars_HashInsideString(t *testing.T) {
	t.Setenv("SYNCTOWER_TEST_HASH", "ok")

	content, missing := substituteEnvVars(`value = "a#${SYNCTOWER_TEST_HASH}" # ${SYNCTOWER_TEST_HASH}`)
	if content != `value = "a#ok" # ${SYNCTOWER_TEST_HASH}` {
		t.Errorf("unexpected content %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars, got %v", missing)
	}
}

func TestSplitComment(t *testing.T) {
	tests := []struct {
		line    string
		code    string
		comment string
	}{
		{`a = 1`, `a = 1`, ``},
		{`# only`, ``, `# only`},
		{`a = "x#y" # c`, `a = "x#y" `, `# c`},
		{`a = 'x#y' # c`, `a = 'x#y' `, `# c`},
		{`a = "q\"#" # c`, `a = "q\"#" `, `# c`},
	}
	for _, tt := range tests {
		code, comment := splitComment(tt.line)
		if code != tt.code || comment != tt.comment {
			t.Errorf("splitComment(%q) = %q, %q; want %q, %q", tt.line, code, comment, tt.code, tt.comment)
		}
	}
}
