package transport

import "context"

// LocalTransport runs commands through a login shell on this host, so
// module-provided scheduler tools are on PATH.
type LocalTransport struct{}

func NewLocalTransport() *LocalTransport {
	return &LocalTransport{}
}

func (t *LocalTransport) Describe() string {
	return "local"
}

func (t *LocalTransport) Run(ctx context.Context, command string) (RunResult, error) {
	return execute(ctx, t.Describe(), command, "bash", "-lc", command)
}
