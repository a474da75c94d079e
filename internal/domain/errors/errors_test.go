package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestStateConflictMatchesSentinel(t *testing.T) {
	err := SkipConflict("SKIPPED")
	if !errors.Is(err, ErrStateConflict) {
		t.Fatal("skip conflict should match ErrStateConflict")
	}
	if err.Error() != "this delivery is already skipped" {
		t.Fatalf("unexpected reason: %s", err.Error())
	}
}

func TestSkipConflictReasonsAreDistinct(t *testing.T) {
	statuses := []string{"SKIPPED", "CANCELLED", "DELIVERED", "PREPARING", "OUT_FOR_DELIVERY", "REFUNDED"}
	seen := make(map[string]string, len(statuses))
	for _, status := range statuses {
		reason := SkipConflict(status).Reason
		if prev, ok := seen[reason]; ok {
			t.Fatalf("statuses %s and %s share reason %q", prev, status, reason)
		}
		seen[reason] = status
	}
}

func TestUnskipConflictMentionsState(t *testing.T) {
	if reason := UnskipConflict("ACCEPTED").Reason; !strings.Contains(reason, "not skipped") {
		t.Fatalf("unexpected reason: %s", reason)
	}
	if !errors.Is(UnskipConflict("DELIVERED"), ErrStateConflict) {
		t.Fatal("unskip conflict should match ErrStateConflict")
	}
}

func TestUnknownStatusFallback(t *testing.T) {
	if reason := SkipConflict("ON_HOLD").Reason; !strings.Contains(reason, "ON_HOLD") {
		t.Fatalf("fallback reason should contain the status, got %s", reason)
	}
}
