package registry

import (
	"context"

	"github.com/charmbracelet/log"
)

// NoopRunner is the default HookRunner: it logs the invocation and reports
// success. Hosts embed a sandboxed runner; the CLI has nowhere safe to
// execute extension scripts, so it only records that the hook would fire.
type NoopRunner struct {
	Logger *log.Logger
}

func (n *NoopRunner) RunHook(ctx context.Context, script string, hookCtx HookContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Logger != nil {
		n.Logger.Debug("skipping hook execution (no sandbox)",
			"id", hookCtx.ExtensionID, "phase", hookCtx.Phase, "script", script,
			"invocation", hookCtx.InvocationID)
	}
	return nil
}
