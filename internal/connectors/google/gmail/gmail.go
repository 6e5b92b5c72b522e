// Package gmail is a facade over the Gmail v1 API for sending mail and
// managing drafts as the authorised user.
package gmail

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/rpa-cli/internal/connectors/google"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// me addresses the authorised user.
const me = "me"

// Gmail wraps a gmail.Service.
type Gmail struct {
	svc     *gmail.Service
	limiter *google.RateLimiter
}

// New creates a Gmail facade.
func New(svc *gmail.Service) *Gmail {
	return &Gmail{svc: svc, limiter: google.NewRateLimiter(google.ServiceGmail)}
}

// Profile returns the authorised user's mailbox profile.
func (g *Gmail) Profile(ctx context.Context) (*gmail.Profile, error) {
	logger.Debug("Gmail.getProfile")
	var p *gmail.Profile
	err := g.limiter.Do(ctx, func() (err error) {
		p, err = g.svc.Users.GetProfile(me).Context(ctx).Do()
		return err
	})
	return p, err
}

// Send sends m and returns the message ID.
func (g *Gmail) Send(ctx context.Context, m Message) (string, error) {
	logger.Debug("Gmail.send to=%v subject=%q", m.To, m.Subject)
	raw, err := BuildMessage(m)
	if err != nil {
		return "", err
	}

	var id string
	err = g.limiter.Do(ctx, func() error {
		sent, err := g.svc.Users.Messages.Send(me, &gmail.Message{Raw: raw}).Context(ctx).Do()
		if err != nil {
			return err
		}
		id = sent.Id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return id, nil
}

// CreateDraft stores m as a draft and returns the draft ID.
func (g *Gmail) CreateDraft(ctx context.Context, m Message) (string, error) {
	logger.Debug("Gmail.createDraft to=%v subject=%q", m.To, m.Subject)
	raw, err := BuildMessage(m)
	if err != nil {
		return "", err
	}

	var id string
	err = g.limiter.Do(ctx, func() error {
		d, err := g.svc.Users.Drafts.Create(me, &gmail.Draft{Message: &gmail.Message{Raw: raw}}).Context(ctx).Do()
		if err != nil {
			return err
		}
		id = d.Id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create draft: %w", err)
	}
	return id, nil
}

// SendDraft sends an existing draft and returns the sent message ID.
func (g *Gmail) SendDraft(ctx context.Context, draftID string) (string, error) {
	logger.Debug("Gmail.sendDraft %s", draftID)
	var id string
	err := g.limiter.Do(ctx, func() error {
		sent, err := g.svc.Users.Drafts.Send(me, &gmail.Draft{Id: draftID}).Context(ctx).Do()
		if err != nil {
			return err
		}
		id = sent.Id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("send draft %s: %w", draftID, err)
	}
	return id, nil
}

// DeleteDraft permanently deletes a draft. It is not moved to the trash.
func (g *Gmail) DeleteDraft(ctx context.Context, draftID string) error {
	logger.Debug("Gmail.deleteDraft %s", draftID)
	err := g.limiter.Do(ctx, func() error {
		return g.svc.Users.Drafts.Delete(me, draftID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("delete draft %s: %w", draftID, err)
	}
	return nil
}
