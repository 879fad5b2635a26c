package worker

import (
	"fmt"
	"testing"

	"reelcode/internal/common"
)

func TestJobNotVisibleYet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain not found", common.ErrNotFound, true},
		{"wrapped not found", fmt.Errorf("evaluation job not found: %w", common.ErrNotFound), true},
		{"other error", fmt.Errorf("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := jobNotVisibleYet(tt.err); got != tt.want {
				t.Errorf("jobNotVisibleYet(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
