package similarity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
)

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to read tree: %v", err)
	}
	return tree
}

func TestStage_FirstOccurrenceWins(t *testing.T) {
	dir := t.TempDir()
	subs := []dto.Submission{
		dto.TextSubmission("alice", "print(1)"),
		dto.TextSubmission("bob", "print(1)"),
		dto.TextSubmission("alice", "print(2)"),
	}

	authors, err := Stage(dir, subs, "py")
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if len(authors) != 2 {
		t.Fatalf("Expected 2 authors, got %d", len(authors))
	}
	for _, name := range []string{"alice", "bob"} {
		if _, ok := authors[name]; !ok {
			t.Fatalf("author %s not staged", name)
		}
	}

	tree := readTree(t, dir)
	expected := map[string]string{
		"alice/solution.py": "print(1)",
		"bob/solution.py":   "print(1)",
	}
	if len(tree) != len(expected) {
		t.Fatalf("Unexpected staged files: %v", tree)
	}
	for path, content := range expected {
		if tree[path] != content {
			t.Fatalf("%s: expected %q, got %q", path, content, tree[path])
		}
	}
}

func TestStage_DistinctCountIgnoresDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		authors  []string
		expected int
	}{
		{name: "empty", authors: nil, expected: 0},
		{name: "single", authors: []string{"a"}, expected: 1},
		{name: "repeated", authors: []string{"a", "a", "a"}, expected: 1},
		{name: "interleaved", authors: []string{"a", "b", "a", "c", "b"}, expected: 3},
		{name: "colliding names", authors: []string{"a!b", "a@b", "a_b"}, expected: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := make([]dto.Submission, 0, len(tt.authors))
			for _, a := range tt.authors {
				subs = append(subs, dto.TextSubmission(a, "code by "+a))
			}
			authors, err := Stage(t.TempDir(), subs, "txt")
			if err != nil {
				t.Fatalf("Stage failed: %v", err)
			}
			if len(authors) != tt.expected {
				t.Fatalf("Expected %d authors, got %d", tt.expected, len(authors))
			}
		})
	}
}

func TestStage_CollidingNamesGetDistinctDirectories(t *testing.T) {
	dir := t.TempDir()
	subs := []dto.Submission{
		dto.TextSubmission("a!b", "first"),
		dto.TextSubmission("a@b", "second"),
		dto.TextSubmission("a_b", "third"),
	}
	if _, err := Stage(dir, subs, "c"); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	tree := readTree(t, dir)
	expected := map[string]string{
		"a_b/solution.c":   "first",
		"a_b-2/solution.c": "second",
		"a_b-3/solution.c": "third",
	}
	for path, content := range expected {
		if tree[path] != content {
			t.Fatalf("%s: expected %q, got %q (tree %v)", path, content, tree[path], tree)
		}
	}
}

func TestStage_RawBytesKept(t *testing.T) {
	dir := t.TempDir()
	raw := []byte{0xff, 0xfe, 'x', 0x00}
	if _, err := Stage(dir, []dto.Submission{{Author: "bin", Source: raw}}, "txt"); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "bin", "solution.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(raw) {
		t.Fatalf("raw bytes changed: %v", data)
	}
}

func TestStage_Idempotent(t *testing.T) {
	subs := []dto.Submission{
		dto.TextSubmission("zoe", "int main() {}"),
		dto.TextSubmission("Ann Lee", "int main() { return 0; }"),
		dto.TextSubmission("zoe", "ignored"),
	}
	first := t.TempDir()
	second := t.TempDir()
	if _, err := Stage(first, subs, "cpp"); err != nil {
		t.Fatal(err)
	}
	if _, err := Stage(second, subs, "cpp"); err != nil {
		t.Fatal(err)
	}

	a, b := readTree(t, first), readTree(t, second)
	if len(a) != len(b) {
		t.Fatalf("trees differ: %v vs %v", a, b)
	}
	for path, content := range a {
		if b[path] != content {
			t.Fatalf("trees differ at %s", path)
		}
	}
}

func TestStage_IOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Stage(blocker, []dto.Submission{dto.TextSubmission("alice", "x")}, "py")
	if err == nil {
		t.Fatalf("Expected staging error")
	}
	var stagingErr *StagingIOError
	if !errors.As(err, &stagingErr) {
		t.Fatalf("Expected StagingIOError, got %T: %v", err, err)
	}
}
