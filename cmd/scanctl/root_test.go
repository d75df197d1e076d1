package main

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestExecute_RecoversFromCommandPanic(t *testing.T) {
	boom := &cobra.Command{
		Use: "boom",
		Run: func(cmd *cobra.Command, args []string) {
			panic("kaboom")
		},
	}
	rootCmd.AddCommand(boom)
	t.Cleanup(func() { rootCmd.RemoveCommand(boom) })

	oldArgs := os.Args
	os.Args = []string{"scanctl", "boom"}
	t.Cleanup(func() { os.Args = oldArgs })

	var code int
	oldExit := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = oldExit })

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	oldStderr := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = oldStderr })

	Execute()

	w.Close()
	os.Stderr = oldStderr
	out, _ := io.ReadAll(r)

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(string(out), "scanctl crashed while running the command: kaboom") {
		t.Errorf("stderr = %q, want crash notice", out)
	}
}
