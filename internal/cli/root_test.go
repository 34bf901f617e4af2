// internal/cli/root_test.go
//
// Exit-code mapping tests: external process statuses propagate, local
// failures collapse to 1.

package cli

import (
	"errors"
	"testing"

	"github.com/yanizio/stagehand/internal/installer"
	"github.com/yanizio/stagehand/internal/launch"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"server exit propagates", &launch.ExitError{Code: 3}, 3},
		{"installer exit propagates", &installer.InstallError{ExitCode: 7}, 7},
		{"unstartable server is local failure", &launch.ExitError{Code: -1}, 1},
		{"plain error is 1", errors.New("missing secret"), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Fatalf("exitCode = %d, want %d", got, tc.want)
			}
		})
	}
}
