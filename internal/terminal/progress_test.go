package terminal

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(3, "hashing", &out)
	for range 3 {
		p.Step()
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "hashing") {
		t.Errorf("output %q does not contain the description", got)
	}
	if !strings.Contains(got, "3/3") {
		t.Errorf("output %q does not contain the final count", got)
	}
}
