package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// execute runs the root command with args and returns combined output.
// Commands share package-level cobra/viper state, so these tests do not
// run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// useTempDB points the session at a fresh database for one test.
func useTempDB(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	viper.Set("db_path", filepath.Join(dir, "recorder.db"))
	viper.Set("legacy_dir", filepath.Join(dir, "legacy"))
	t.Cleanup(func() {
		viper.Set("db_path", "")
		viper.Set("legacy_dir", "")
	})
}

func TestAddAndList(t *testing.T) {
	useTempDB(t)

	out, err := execute(t, "add", "Cheese", "Onions")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "logged") {
		t.Errorf("add output = %q, want logged confirmation", out)
	}

	out, err = execute(t, "list")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	for _, want := range []string{"Cheese", "Onions", "[ ]"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestAddUnknownTopping(t *testing.T) {
	useTempDB(t)

	out, err := execute(t, "add", "Gravel")
	if err == nil {
		t.Fatalf("add of unknown topping succeeded:\n%s", out)
	}
	if !strings.Contains(err.Error(), "Gravel") {
		t.Errorf("err = %v, want topping name in message", err)
	}
}

func TestAddCreateFlag(t *testing.T) {
	useTempDB(t)

	out, err := execute(t, "add", "--create", "Pineapple")
	if err != nil {
		t.Fatalf("add --create: %v\n%s", err, out)
	}
	t.Cleanup(func() { _ = addCmd.Flags().Set("create", "false") })

	out, err = execute(t, "toppings")
	if err != nil {
		t.Fatalf("toppings: %v", err)
	}
	if !strings.Contains(out, "Pineapple") {
		t.Errorf("catalog missing created topping:\n%s", out)
	}
}

func TestStats(t *testing.T) {
	useTempDB(t)

	if out, err := execute(t, "add", "Cheese"); err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if out, err := execute(t, "add", "Onions", "Cheese"); err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}

	out, err := execute(t, "stats")
	if err != nil {
		t.Fatalf("stats: %v\n%s", err, out)
	}
	for _, want := range []string{"dogs logged:     2", "Cheese", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestDoneFlow(t *testing.T) {
	useTempDB(t)

	out, err := execute(t, "add", "Mustard")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	fields := strings.Fields(out)
	if len(fields) < 2 {
		t.Fatalf("add output = %q, want 'logged <id> ...'", out)
	}
	id := fields[1]

	if out, err := execute(t, "done", id); err != nil {
		t.Fatalf("done: %v\n%s", err, out)
	}
	out, err = execute(t, "list", "--done")
	if err != nil {
		t.Fatalf("list --done: %v", err)
	}
	if !strings.Contains(out, "[x]") || !strings.Contains(out, id) {
		t.Errorf("completed entry missing from list --done:\n%s", out)
	}
	t.Cleanup(func() {
		_ = listCmd.Flags().Set("done", "false")
		_ = doneCmd.Flags().Set("undo", "false")
	})
}

func TestRemoveAbsentEntry(t *testing.T) {
	useTempDB(t)

	out, err := execute(t, "remove", "no-such-id")
	if err != nil {
		t.Fatalf("remove of absent entry errored: %v", err)
	}
	if !strings.Contains(out, "no entry") {
		t.Errorf("output = %q, want absent-entry notice", out)
	}
}

func TestMigrateNoBlob(t *testing.T) {
	useTempDB(t)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "nothing to do") {
		t.Errorf("output = %q, want no-op notice", out)
	}
}
