package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paperweights/internal/config"
	"paperweights/internal/testsupport"
)

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nepisodes_dir = %q\ndigest_dir = %q\nstaging_dir = %q\nlog_dir = %q\n\n"+
			"[publish]\nrepo = %q\n\n[logging]\nformat = \"json\"\n",
		cfg.Paths.EpisodesDir,
		cfg.Paths.DigestDir,
		cfg.Paths.StagingDir,
		cfg.Paths.LogDir,
		cfg.Publish.Repo,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func setupConfigFile(t *testing.T) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return cfg, configPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := runCommand(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"assemble", "publish", "feed", "episodes", "preflight"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestValidateDate(t *testing.T) {
	for _, date := range []string{"2026-03-02", "1999-12-31"} {
		if err := validateDate(date); err != nil {
			t.Errorf("validateDate(%q) = %v", date, err)
		}
	}
	for _, date := range []string{"2026-3-2", "20260302", "tomorrow", "2026-03-02T00:00"} {
		if err := validateDate(date); err == nil {
			t.Errorf("validateDate(%q) accepted", date)
		}
	}
}

func TestAssembleRejectsMalformedDate(t *testing.T) {
	_, configPath := setupConfigFile(t)

	_, err := runCommand(t, "-c", configPath, "assemble", "03-02-2026")
	if err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Fatalf("error = %v, want date-format rejection", err)
	}
}

func TestConfigInitAndOverwriteGuard(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output %q does not mention %q", out, target)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite must fail")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsResolvedValues(t *testing.T) {
	cfg, configPath := setupConfigFile(t)

	out, err := runCommand(t, "-c", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, configPath) {
		t.Errorf("output missing config path %q", configPath)
	}
	if !strings.Contains(out, cfg.Publish.Repo) {
		t.Errorf("output missing repo %q", cfg.Publish.Repo)
	}
}

func TestEpisodesScanAndList(t *testing.T) {
	cfg, configPath := setupConfigFile(t)

	const date = "2026-03-02"
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.EpisodesDir, date+"-podcast.mp3"), 2048)

	out, err := runCommand(t, "-c", configPath, "episodes", "scan")
	if err != nil {
		t.Fatalf("episodes scan: %v", err)
	}
	if !strings.Contains(out, "1 added") {
		t.Errorf("scan output = %q, want one addition", out)
	}

	out, err = runCommand(t, "-c", configPath, "episodes", "list")
	if err != nil {
		t.Fatalf("episodes list: %v", err)
	}
	if !strings.Contains(out, date) {
		t.Errorf("list output missing %s:\n%s", date, out)
	}
	// Scanned rows carry display metadata; with no script on disk the
	// generic title stands in rather than an empty cell.
	if !strings.Contains(out, "AI Research Briefing") {
		t.Errorf("list output missing a title for the scanned row:\n%s", out)
	}

	// A second scan must leave the ledger untouched.
	out, err = runCommand(t, "-c", configPath, "episodes", "scan")
	if err != nil {
		t.Fatalf("episodes rescan: %v", err)
	}
	if !strings.Contains(out, "0 added") {
		t.Errorf("rescan output = %q, want no additions", out)
	}
}

func TestPublishRequiresScriptOrArtifact(t *testing.T) {
	// Stub every external binary so preflight passes without real tools.
	stubConfig := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	stubPath := filepath.Join(testsupport.BaseDir(stubConfig), "config.toml")
	writeTestConfig(t, stubPath, stubConfig)

	_, err := runCommand(t, "-c", stubPath, "publish", "2026-03-02")
	if err == nil {
		t.Fatal("publish with no script and no artifact must fail")
	}
	if !strings.Contains(err.Error(), "2026-03-02") {
		t.Errorf("error %v does not name the date", err)
	}
}
