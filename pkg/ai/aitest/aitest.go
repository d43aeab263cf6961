// Package aitest provides an in-memory ai.GraphAIClient for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
)

// Call records a single request made to a Client.
type Call struct {
	Name          string
	Prompt        string
	SystemPrompts []string
}

// Client answers requests with Respond. Structured responses are decoded
// with ai.UnmarshalFlexible, so Respond returns raw model output.
type Client struct {
	Respond func(name, prompt string) (string, error)

	mu    sync.Mutex
	calls []Call
}

var _ ai.GraphAIClient = (*Client)(nil)

// Static returns a Client that always answers with response.
func Static(response string) *Client {
	return &Client{Respond: func(string, string) (string, error) { return response, nil }}
}

func (c *Client) record(name, prompt string, opts []ai.GenerateOption) {
	options := ai.ApplyOptions(ai.GenerateOptions{}, opts...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Name: name, Prompt: prompt, SystemPrompts: options.SystemPrompts})
}

// Calls returns a copy of the recorded requests.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

func (c *Client) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	c.record("", prompt, opts)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.Respond("", prompt)
}

func (c *Client) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	c.record(name, prompt, opts)
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := c.Respond(name, prompt)
	if err != nil {
		return err
	}
	return ai.UnmarshalFlexible(content, out)
}

func (c *Client) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error {
	return nil
}

func (c *Client) ResetMetrics() {}

func (c *Client) GetMetrics() ai.ModelMetrics {
	return ai.ModelMetrics{}
}
