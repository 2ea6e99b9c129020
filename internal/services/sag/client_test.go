package sag

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestNewCLIWithOptions(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/sag"), WithModelID("eleven_turbo"))
	if cli.binary != "/opt/sag" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
	if cli.modelID != "eleven_turbo" {
		t.Fatalf("expected model override to be applied, got %q", cli.modelID)
	}
}

func TestSynthesizeRequiresFields(t *testing.T) {
	cli := NewCLI()
	cases := []Request{
		{Text: "", VoiceID: "v", OutputPath: "/tmp/out.mp3"},
		{Text: "hello", VoiceID: "", OutputPath: "/tmp/out.mp3"},
		{Text: "hello", VoiceID: "v", OutputPath: ""},
	}
	for i, req := range cases {
		if err := cli.Synthesize(context.Background(), req); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestSynthesizeBuildsArguments(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "SAG_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	out := filepath.Join(t.TempDir(), "chunk_000.mp3")
	req := Request{Text: "Welcome back.", VoiceID: "voice-a", OutputPath: out}
	if err := cli.Synthesize(context.Background(), req); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	want := []string{"--model-id", "eleven_v3", "-v", "voice-a", "-o", out, "Welcome back."}
	if len(capturedArgs) != len(want) {
		t.Fatalf("expected args %v, got %v", want, capturedArgs)
	}
	for i := range want {
		if capturedArgs[i] != want[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, want[i], capturedArgs[i])
		}
	}
}

func TestSynthesizeFailure(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI()
	req := Request{Text: "hello", VoiceID: "voice-a", OutputPath: "/tmp/out.mp3"}
	err := cli.Synthesize(context.Background(), req)
	if err == nil {
		t.Fatal("expected synthesis failure error")
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("SAG_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("SAG_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "voice quota exceeded")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
