// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package check

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// External tools are always invoked with explicit argument vectors so that no
// shell ever gets to interpret the (potentially hostile) domain value.
// Exchangeable for unit tests.
var (
	lookPath = exec.LookPath

	// runTool invokes an external tool, streaming its combined stdout and
	// stderr to w as it appears.
	runTool = func(ctx context.Context, w io.Writer, argv ...string) error {
		log.Debugf("exec: %s", strings.Join(argv, " "))
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Stdout = w
		cmd.Stderr = w
		return cmd.Run()
	}

	// captureTool invokes an external tool and returns its combined stdout
	// and stderr, for steps that post-process (truncate, presence-check) the
	// output before showing it.
	captureTool = func(ctx context.Context, argv ...string) (string, error) {
		log.Debugf("exec: %s", strings.Join(argv, " "))
		var buf bytes.Buffer
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Stdout = &buf
		cmd.Stderr = &buf
		err := cmd.Run()
		return buf.String(), err
	}
)
