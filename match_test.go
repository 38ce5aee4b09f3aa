package fheregex

import (
	"context"
	"regexp"
	"strings"
	"testing"
)

func clearMatch(t *testing.T, pattern, content string) bool {
	t.Helper()
	engine := NewEngine[byte, bool](Clear{})
	res, err := engine.HasMatch(context.Background(), ClearContent(content), pattern)
	if err != nil {
		t.Fatalf("HasMatch(%q, %q) failed: %v", pattern, content, err)
	}
	return res
}

// oracle evaluates the same pattern with the standard library on the
// plaintext. The supported dialect is a subset of RE2; only the
// delimiters and the flag need translating.
func oracle(t *testing.T, pattern, content string) bool {
	t.Helper()
	body := strings.TrimSuffix(strings.TrimPrefix(pattern, "/"), "/")
	flags := "(?s)"
	if strings.HasSuffix(pattern, "/i") {
		body = strings.TrimSuffix(body, "i")
		body = strings.TrimSuffix(body, "/")
		flags = "(?si)"
	}
	re, err := regexp.Compile(flags + body)
	if err != nil {
		t.Fatalf("oracle rejected %q: %v", pattern, err)
	}
	return re.MatchString(content)
}

// TestSemanticEquivalence checks that the decrypted result equals
// plaintext regex semantics across the supported construct set.
func TestSemanticEquivalence(t *testing.T) {
	patterns := []string{
		"/a/",
		"/ab/",
		"/^ab/",
		"/ab$/",
		"/^ab$/",
		"/^a.b$/",
		"/a?b/",
		"/^a?ab/",
		"/a*b/",
		"/^a+b$/",
		"/a{2}/",
		"/^a{2,}$/",
		"/^a{1,3}b$/",
		"/abc|cde/",
		"/^ab|cd$/",
		"/(ab)+/",
		"/^(ab)*$/",
		"/(a|b)c/",
		"/[abc]/",
		"/^[a-c]+$/",
		"/[^a-c]/",
		"/^[^x]b$/",
		"/abc/i",
		"/^abc$/i",
		"/[a-c]x/i",
		`/a\.b/`,
		`/\^x/`,
		"/a|/",
		"/x/",
	}
	contents := []string{
		"", "a", "b", "x", "ab", "ba", "aa", "abc", "acb", "aab",
		"abab", "aaab", "cde", "abcde", "xyz", "a.b", "a^x", "^x",
		"ABC", "aBc", "AAB", "dx", "Dx", "bb", "aaa", "aaaa",
	}

	for _, pattern := range patterns {
		for _, content := range contents {
			got := clearMatch(t, pattern, content)
			want := oracle(t, pattern, content)
			if got != want {
				t.Errorf("HasMatch(%q, %q) = %v, oracle says %v", pattern, content, got, want)
			}
		}
	}
}

// TestAnchoredPlusScenario pins the documented scenario: /^a+b$/
// matches aab and rejects acb.
func TestAnchoredPlusScenario(t *testing.T) {
	if clearMatch(t, "/^a+b$/", "acb") {
		t.Errorf(`HasMatch("/^a+b$/", "acb") = true, want false`)
	}
	if !clearMatch(t, "/^a+b$/", "aab") {
		t.Errorf(`HasMatch("/^a+b$/", "aab") = false, want true`)
	}
}

// TestCaseInsensitiveVectors checks /^abc$/i against every case
// variant and a few negatives.
func TestCaseInsensitiveVectors(t *testing.T) {
	positives := []string{"abc", "Abc", "aBc", "abC", "ABc", "aBC", "AbC", "ABC"}
	for _, content := range positives {
		if !clearMatch(t, "/^abc$/i", content) {
			t.Errorf("HasMatch(/^abc$/i, %q) = false, want true", content)
		}
	}
	negatives := []string{"abd", "ab", "abcd", "cba", "ab c"}
	for _, content := range negatives {
		if clearMatch(t, "/^abc$/i", content) {
			t.Errorf("HasMatch(/^abc$/i, %q) = true, want false", content)
		}
	}
}

// TestIdempotence checks that repeated evaluation of the same request
// produces the same decrypted result.
func TestIdempotence(t *testing.T) {
	for _, content := range []string{"aab", "acb"} {
		first := clearMatch(t, "/^a+b$/", content)
		second := clearMatch(t, "/^a+b$/", content)
		if first != second {
			t.Errorf("HasMatch not idempotent on %q: %v then %v", content, first, second)
		}
	}
}

// TestContentLengthMismatch checks that a plan is bound to the length
// it was built for.
func TestContentLengthMismatch(t *testing.T) {
	plan := mustPlan(t, "/ab/", 3)
	engine := NewEngine[byte, bool](Clear{})
	_, _, err := engine.Evaluate(context.Background(), plan, ClearContent("toolong"))
	if err == nil {
		t.Fatalf("Evaluate accepted content of the wrong length")
	}
}

// TestCancelledContext checks that evaluation stops scheduling work
// once the caller aborts.
func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine[byte, bool](Clear{})
	_, err := engine.HasMatch(ctx, ClearContent("aab"), "/^a+b$/")
	if err == nil {
		t.Fatalf("HasMatch succeeded under a cancelled context")
	}
}
