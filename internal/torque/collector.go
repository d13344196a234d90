package torque

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"myresources/internal/transport"
)

// QstatCommand prints full status of all jobs as XML, one entry per array
// task.
const QstatCommand = "qstat -xt"

type Collector struct {
	transport      transport.Transport
	commandTimeout time.Duration
}

func NewCollector(t transport.Transport, commandTimeout time.Duration) *Collector {
	return &Collector{
		transport:      t,
		commandTimeout: commandTimeout,
	}
}

// Collect runs qstat and decodes its output.
func (c *Collector) Collect(ctx context.Context) ([]Fields, error) {
	raw, err := c.runWithTimeout(ctx, QstatCommand)
	if err != nil {
		return nil, fmt.Errorf("query scheduler: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	entries, err := DecodeDocument(strings.NewReader(raw))
	if err != nil {
		var docErr *UnreadableDocumentError
		if errors.As(err, &docErr) {
			docErr.Source = "qstat on " + c.transport.Describe()
		}
		return nil, err
	}
	return entries, nil
}

func (c *Collector) runWithTimeout(ctx context.Context, command string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, c.commandTimeout)
	defer cancel()

	res, err := c.transport.Run(cmdCtx, command)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
