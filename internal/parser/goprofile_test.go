package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestParseGoProfile tests decoding go test -coverprofile files.
func TestParseGoProfile(t *testing.T) {
	t.Parallel()

	t.Run("blocks expand to lines and functions come from the source", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source := strings.Join([]string{
			"package main",
			"",
			"func main() {",
			"	helper()",
			"}",
			"",
			"func helper() int {",
			"	return 1",
			"}",
		}, "\n")
		if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(source), 0600); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		profile := strings.Join([]string{
			"mode: set",
			"example.com/demo/main.go:3.13,5.2 2 1",
			"example.com/demo/main.go:7.19,9.2 1 0",
		}, "\n")

		files, err := New(WithSourceRoot(dir)).Parse(strings.NewReader(profile), "cover.out")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("expected 1 file, got %d", len(files))
		}

		file := files[0]
		if file.RelPath != "example.com/demo/main.go" {
			t.Errorf("expected relative path example.com/demo/main.go, got %q", file.RelPath)
		}
		if file.Path != filepath.Join(dir, "main.go") {
			t.Errorf("expected the resolved source path, got %q", file.Path)
		}

		for number, want := range map[int]uint64{3: 1, 4: 1, 5: 1, 7: 0, 8: 0, 9: 0} {
			got, ok := file.Result.Lines[number]
			if !ok {
				t.Errorf("expected line %d to be measured", number)
				continue
			}
			if got != want {
				t.Errorf("expected %d hits on line %d, got %d", want, number, got)
			}
		}

		mainFn, ok := file.Result.Functions["main"]
		if !ok {
			t.Fatal("expected the main function to be recorded")
		}
		if mainFn.Start != 3 {
			t.Errorf("expected main to start on line 3, got %d", mainFn.Start)
		}
		if !mainFn.Executed {
			t.Error("expected main to be marked executed")
		}

		helperFn, ok := file.Result.Functions["helper"]
		if !ok {
			t.Fatal("expected the helper function to be recorded")
		}
		if helperFn.Start != 7 {
			t.Errorf("expected helper to start on line 7, got %d", helperFn.Start)
		}
		if helperFn.Executed {
			t.Error("expected helper to be marked not executed")
		}
	})

	t.Run("missing source file reports no functions", func(t *testing.T) {
		t.Parallel()

		profile := strings.Join([]string{
			"mode: set",
			"example.com/demo/absent.go:3.13,5.2 2 1",
		}, "\n")

		files, err := New(WithSourceRoot(t.TempDir())).Parse(strings.NewReader(profile), "cover.out")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("expected 1 file, got %d", len(files))
		}
		if len(files[0].Result.Functions) != 0 {
			t.Errorf("expected no functions, got %d", len(files[0].Result.Functions))
		}
		if len(files[0].Result.Lines) != 3 {
			t.Errorf("expected 3 measured lines, got %d", len(files[0].Result.Lines))
		}
		if files[0].Path != "example.com/demo/absent.go" {
			t.Errorf("expected the profile path to be kept, got %q", files[0].Path)
		}
	})

	t.Run("larger count wins on overlapping lines", func(t *testing.T) {
		t.Parallel()

		profile := strings.Join([]string{
			"mode: count",
			"example.com/demo/absent.go:3.1,5.2 1 1",
			"example.com/demo/absent.go:5.10,7.2 1 3",
		}, "\n")

		files, err := New(WithSourceRoot(t.TempDir())).Parse(strings.NewReader(profile), "cover.out")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if files[0].Result.Lines[5] != 3 {
			t.Errorf("expected 3 hits on line 5, got %d", files[0].Result.Lines[5])
		}
		if files[0].Result.Lines[3] != 1 {
			t.Errorf("expected 1 hit on line 3, got %d", files[0].Result.Lines[3])
		}
	})

	t.Run("method names carry the receiver", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source := strings.Join([]string{
			"package demo",
			"",
			"type Server struct{}",
			"",
			"func (s *Server) Start() error {",
			"	return nil",
			"}",
		}, "\n")
		if err := os.WriteFile(filepath.Join(dir, "server.go"), []byte(source), 0600); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		profile := strings.Join([]string{
			"mode: set",
			"example.com/demo/server.go:5.33,7.2 1 1",
		}, "\n")

		files, err := New(WithSourceRoot(dir)).Parse(strings.NewReader(profile), "cover.out")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fn, ok := files[0].Result.Functions["Server.Start"]
		if !ok {
			t.Fatalf("expected Server.Start to be recorded, got %v", files[0].Result.Functions)
		}
		if fn.Start != 5 {
			t.Errorf("expected Server.Start to begin on line 5, got %d", fn.Start)
		}
	})

	t.Run("broken profile fails", func(t *testing.T) {
		t.Parallel()

		profile := "mode: set\nnot a block line\n"
		if _, err := New().Parse(strings.NewReader(profile), "cover.out"); err == nil {
			t.Error("expected an error for a malformed profile")
		}
	})
}
