// internal/service/message_dispatcher.go
package service

import (
	"fmt"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/chatdesk-backend/internal/errors"
	"github.com/unclebandit/chatdesk-backend/internal/model"
	"github.com/unclebandit/chatdesk-backend/internal/repository"
)

// MessageDispatcher constructs and persists the outbound message for one
// contact/conversation pair. API and SMS channels always send plain text;
// WhatsApp sends the template when the campaign has one, plain text
// otherwise.
type MessageDispatcher struct {
	MessageRepo repository.MessageRepositoryInterface
	AgentRepo   repository.AgentRepositoryInterface
	Log         *zap.Logger
}

func (d *MessageDispatcher) Dispatch(conversation *model.Conversation, campaign *model.Campaign, contact *model.Contact, channel model.ChannelKind) (*model.Message, error) {
	switch channel {
	case model.ChannelAPI, model.ChannelSMS, model.ChannelTwilioSMS:
		return d.sendText(conversation, campaign, contact)
	case model.ChannelWhatsApp:
		if campaign.HasTemplate() {
			return d.sendTemplate(conversation, campaign)
		}
		return d.sendText(conversation, campaign, contact)
	default:
		return nil, appErrors.NewUnsupportedChannel(campaign.ID, channel.String())
	}
}

func (d *MessageDispatcher) sendText(conversation *model.Conversation, campaign *model.Campaign, contact *model.Contact) (*model.Message, error) {
	senderID, err := d.resolveSender(campaign)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ConversationID: conversation.ID,
		AccountID:      conversation.AccountID,
		InboxID:        conversation.InboxID,
		MessageType:    model.MessageTypeOutgoing,
		Content:        RenderTemplate(campaign.Message, contactFields(contact)),
		SenderID:       senderID,
		ContentAttributes: map[string]any{
			"campaign_id": campaign.ID,
		},
	}
	if err := d.MessageRepo.Create(message); err != nil {
		return nil, err
	}
	d.Log.Debug("text message dispatched",
		zap.Int("campaign_id", campaign.ID),
		zap.Int("contact_id", contact.ID),
		zap.Int("message_id", message.ID))
	return message, nil
}

func (d *MessageDispatcher) sendTemplate(conversation *model.Conversation, campaign *model.Campaign) (*model.Message, error) {
	params, err := ParseTemplateParams(campaign.TemplateParams)
	if err != nil {
		// strict mode: malformed template payload fails the send instead of
		// degrading to an empty template
		return nil, fmt.Errorf("campaign %d: %w", campaign.ID, err)
	}

	senderID, err := d.resolveSender(campaign)
	if err != nil {
		return nil, err
	}

	content := ""
	if params != nil {
		content = params.Name
	}
	message := &model.Message{
		ConversationID: conversation.ID,
		AccountID:      conversation.AccountID,
		InboxID:        conversation.InboxID,
		MessageType:    model.MessageTypeOutgoing,
		Content:        content,
		SenderID:       senderID,
		ContentAttributes: map[string]any{
			"campaign_id":     campaign.ID,
			"template_params": params,
		},
	}
	if err := d.MessageRepo.Create(message); err != nil {
		return nil, err
	}
	d.Log.Debug("template message dispatched",
		zap.Int("campaign_id", campaign.ID),
		zap.Int("message_id", message.ID))
	return message, nil
}

// resolveSender picks the campaign's configured sender, falling back to the
// account's first agent. Order matters here.
func (d *MessageDispatcher) resolveSender(campaign *model.Campaign) (*int, error) {
	if campaign.SenderID != nil {
		return campaign.SenderID, nil
	}
	agent, err := d.AgentRepo.FirstForAccount(campaign.AccountID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		d.Log.Warn("no agent available as fallback sender", zap.Int("account_id", campaign.AccountID))
		return nil, nil
	}
	id := agent.ID
	return &id, nil
}
