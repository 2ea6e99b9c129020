package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"paperweights/internal/config"
	"paperweights/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(config.Notifications{})
	if err := svc.NotifyPublishStarted(context.Background(), "2026-02-11"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := notifications.NewService(config.Notifications{NtfyTopic: server.URL, RequestTimeout: 5})

	t.Run("publish completed", func(t *testing.T) {
		err := svc.NotifyPublishCompleted(context.Background(), "2026-02-11", "Sparse Mixture Routing",
			"https://github.com/acme/paper-weights-podcast/releases/tag/2026-02-11")
		if err != nil {
			t.Fatalf("notification returned error: %v", err)
		}
		if captured.title != "Paper Weights - Published" {
			t.Fatalf("unexpected title %q", captured.title)
		}
		want := "Published 2026-02-11: Sparse Mixture Routing\nhttps://github.com/acme/paper-weights-podcast/releases/tag/2026-02-11"
		if captured.body != want {
			t.Fatalf("unexpected body %q", captured.body)
		}
		if captured.priority != "high" {
			t.Fatalf("expected high priority, got %q", captured.priority)
		}
	})

	t.Run("synthesis failures", func(t *testing.T) {
		if err := svc.NotifySynthesisFailures(context.Background(), "2026-02-11", 2, 40); err != nil {
			t.Fatalf("notification returned error: %v", err)
		}
		if captured.body != "Episode 2026-02-11: 2 of 40 chunks failed synthesis" {
			t.Fatalf("unexpected body %q", captured.body)
		}
		if captured.tags != "paperweights,synthesis,warning" {
			t.Fatalf("unexpected tags %q", captured.tags)
		}
	})

	t.Run("error", func(t *testing.T) {
		if err := svc.NotifyError(context.Background(), errors.New("release create failed"), "publish"); err != nil {
			t.Fatalf("notification returned error: %v", err)
		}
		if captured.body != "Error with publish: release create failed" {
			t.Fatalf("unexpected body %q", captured.body)
		}
		if captured.priority != "high" {
			t.Fatalf("expected high priority, got %q", captured.priority)
		}
	})
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := notifications.NewService(config.Notifications{NtfyTopic: server.URL})
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
