package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTracker_Update(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker("Analyzing", 2, WithWriter(&buf))

	tr.Update(1, 4, "A.cs")
	if got := tr.Current(); got != 1 {
		t.Errorf("Current() = %d, want 1", got)
	}
	tr.Update(4, 4, "D.cs")
	if got := tr.Current(); got != 4 {
		t.Errorf("Current() = %d, want 4", got)
	}
	tr.FinishSuccess()
}

func TestSpinner_FinishError(t *testing.T) {
	var buf bytes.Buffer
	NewSpinner("churn", WithWriter(&buf)).FinishError(errors.New("boom"))
	if !strings.Contains(buf.String(), "churn error: boom") {
		t.Errorf("output = %q", buf.String())
	}
}
