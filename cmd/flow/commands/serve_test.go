package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/flow/internal/models"
	"github.com/benvon/flow/internal/tracker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// failingSource fails every fetch
type failingSource struct {
	tracker.RecordSource
}

func (failingSource) List(ctx context.Context) ([]models.TimeRecord, error) {
	return nil, errors.New("backend down")
}

func TestLogTrackerErrors_DrainsNotifications(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	tr := tracker.New(failingSource{}, log)
	done := make(chan struct{})
	go func() {
		logTrackerErrors(tr.Errors(), log)
		close(done)
	}()

	for i := 1; i <= 40; i++ {
		_ = tr.Refresh(context.Background())
		deadline := time.Now().Add(2 * time.Second)
		for logs.FilterMessage("timer_error_notification").Len() < i {
			if time.Now().After(deadline) {
				t.Fatalf("Timed out waiting for notification %d to be drained", i)
			}
			time.Sleep(time.Millisecond)
		}
	}
	tr.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the drain to stop once the tracker closed")
	}

	if got := logs.FilterMessage("error_notification_dropped").Len(); got != 0 {
		t.Errorf("Expected no dropped notifications, got %d", got)
	}
	if got := logs.FilterMessage("timer_error_notification").Len(); got != 40 {
		t.Errorf("Expected 40 drained notifications, got %d", got)
	}
}
