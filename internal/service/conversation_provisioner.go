// internal/service/conversation_provisioner.go
package service

import (
	"github.com/unclebandit/chatdesk-backend/internal/model"
	"github.com/unclebandit/chatdesk-backend/internal/repository"
)

// ConversationProvisioner finds or creates the thread a campaign message is
// delivered on. An existing conversation on the binding is reused as-is,
// whatever campaign (or none) created it; only new conversations carry the
// originating campaign id. Message-level attribution stays strict because
// every dispatched message records the campaign id in its attributes.
type ConversationProvisioner struct {
	ConversationRepo repository.ConversationRepositoryInterface
}

func (p *ConversationProvisioner) Provision(binding *model.ContactInbox, campaign *model.Campaign) (*model.Conversation, error) {
	existing, err := p.ConversationRepo.LatestForContactInbox(binding.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	campaignID := campaign.ID
	conversation := &model.Conversation{
		AccountID:      campaign.AccountID,
		InboxID:        campaign.InboxID,
		ContactID:      binding.ContactID,
		ContactInboxID: binding.ID,
		CampaignID:     &campaignID,
	}
	if err := p.ConversationRepo.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}
