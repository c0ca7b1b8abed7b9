package prompt

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
)

// ErrBusy is returned by Show while another prompt is on screen.
var ErrBusy = errors.New("a prompt is already on screen")

// Collector shows prompts without blocking the caller and delivers each
// answer on Responses.
type Collector struct {
	ask       func(context.Context, models.PromptRequest) (models.PromptResponse, error)
	responses chan models.PromptResponse

	mu   sync.Mutex
	busy bool
}

func NewCollector() *Collector {
	return &Collector{ask: Ask, responses: make(chan models.PromptResponse, 1)}
}

func (c *Collector) Responses() <-chan models.PromptResponse {
	return c.responses
}

func (c *Collector) Show(ctx context.Context, req models.PromptRequest) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	go func() {
		resp, err := c.ask(ctx, req)
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
		if err != nil {
			// Release the tab and resume the normal cycle.
			logger.Warn("Prompt failed", "error", err)
			resp = models.PromptResponse{TabID: req.TabID, Action: models.ActionSnooze}
		}
		select {
		case c.responses <- resp:
		case <-ctx.Done():
		}
	}()
	return nil
}
