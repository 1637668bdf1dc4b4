package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vinony/internal/common"
)

const chatReplyTemplate = "This is a simulated response to: \"%s\"\n\n" +
	"Here's what I can help you with:\n\n" +
	"- Answer questions\n" +
	"- Write code\n" +
	"- Analyze data\n" +
	"- And much more!\n\n" +
	"```javascript\n" +
	"const example = \"This is a code block\";\n" +
	"console.log(example);\n" +
	"```"

// Simulated answers every chat request with a canned reply and every image
// request with a link built by its Linker.
type Simulated struct {
	linker Linker
	verify TokenVerifier
}

// NewSimulated returns a simulated provider. verify may be nil, in which
// case access tokens are not checked.
func NewSimulated(linker Linker, verify TokenVerifier) *Simulated {
	return &Simulated{linker: linker, verify: verify}
}

func (p *Simulated) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if err := p.check(req.AccessToken); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf(chatReplyTemplate, req.Prompt), nil
}

func (p *Simulated) Render(ctx context.Context, req ImageRequest) (string, error) {
	if err := p.check(req.AccessToken); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", common.ErrEmptyPrompt
	}
	return p.linker.Link(ctx, req.ID, req.Prompt)
}

func (p *Simulated) check(token string) error {
	if p.verify == nil || token == "" {
		return nil
	}
	if _, err := p.verify(token); err != nil {
		return fmt.Errorf("provider rejected session: %w", err)
	}
	return nil
}
