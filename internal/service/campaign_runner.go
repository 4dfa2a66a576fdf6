// internal/service/campaign_runner.go
package service

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/chatdesk-backend/internal/errors"
	"github.com/unclebandit/chatdesk-backend/internal/model"
	"github.com/unclebandit/chatdesk-backend/internal/repository"
)

// RunReport summarizes one campaign run.
type RunReport struct {
	CampaignID int
	Claimed    bool
	Sent       int
	Failed     int
}

type RunnerOptions struct {
	// FallbackToAllContacts sends to every contact bound to the campaign's
	// inbox when the audience resolves to nothing.
	FallbackToAllContacts bool
	// Concurrency bounds the per-contact worker pool. Zero or one means
	// sequential processing.
	Concurrency int
}

// CampaignRunner drives one campaign run end to end: claim, resolve,
// bind/provision/dispatch per contact.
//
// Invariant: at-most-once campaign completion, best-effort per-contact
// delivery. The status flip to completed happens once, atomically, before
// any audience work; per-contact failures are counted and never roll the
// claim back.
type CampaignRunner struct {
	CampaignRepo repository.CampaignRepositoryInterface
	InboxRepo    repository.InboxRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	Resolver     *AudienceResolver
	Binder       *ContactChannelBinder
	Provisioner  *ConversationProvisioner
	Dispatcher   *MessageDispatcher
	Options      RunnerOptions
	Log          *zap.Logger
}

func (r *CampaignRunner) Run(campaign *model.Campaign) (*RunReport, error) {
	report := &RunReport{CampaignID: campaign.ID}

	// completed campaigns are a no-op; this check runs before any other work
	if campaign.Completed() {
		return report, nil
	}

	inbox, channelErr := r.usableInbox(campaign)
	if channelErr != nil {
		r.Log.Error("campaign channel is not usable",
			zap.Int("campaign_id", campaign.ID),
			zap.Error(channelErr))
		return report, channelErr
	}
	if !campaign.HasMessage() && !campaign.HasTemplate() {
		err := appErrors.NewMissingContent(campaign.ID)
		r.Log.Error("campaign has no content", zap.Int("campaign_id", campaign.ID), zap.Error(err))
		return report, err
	}

	// Claim before touching the audience. A concurrently-triggered second
	// run loses the conditional update and exits without sending.
	claimed, err := r.CampaignRepo.ClaimCompletion(campaign.ID)
	if err != nil {
		return report, err
	}
	if !claimed {
		r.Log.Info("campaign already claimed by another run", zap.Int("campaign_id", campaign.ID))
		return report, nil
	}
	report.Claimed = true
	campaign.Status = model.CampaignStatusCompleted

	contacts, err := r.Resolver.Resolve(campaign)
	if err != nil {
		// the claim stands; the run ends with nothing sent
		r.Log.Error("audience resolution failed", zap.Int("campaign_id", campaign.ID), zap.Error(err))
		return report, err
	}
	if len(contacts) == 0 && r.Options.FallbackToAllContacts {
		contacts, err = r.ContactRepo.ListByInbox(campaign.InboxID)
		if err != nil {
			r.Log.Error("inbox contact fallback failed", zap.Int("campaign_id", campaign.ID), zap.Error(err))
			return report, err
		}
	}

	var sent, failed int64
	process := func(contact model.Contact) {
		if err := r.sendToContact(campaign, inbox, &contact); err != nil {
			atomic.AddInt64(&failed, 1)
			r.Log.Warn("campaign send failed",
				zap.Int("campaign_id", campaign.ID),
				zap.Int("contact_id", contact.ID),
				zap.Error(err))
			return
		}
		atomic.AddInt64(&sent, 1)
	}

	if r.Options.Concurrency > 1 {
		r.processPool(contacts, process)
	} else {
		for _, contact := range contacts {
			process(contact)
		}
	}

	report.Sent = int(sent)
	report.Failed = int(failed)
	campaign.SentCount = report.Sent
	campaign.FailedCount = report.Failed
	if err := r.CampaignRepo.UpdateRunCounts(campaign.ID, report.Sent, report.Failed); err != nil {
		r.Log.Warn("failed to persist run counts", zap.Int("campaign_id", campaign.ID), zap.Error(err))
	}

	r.Log.Info("campaign run finished",
		zap.Int("campaign_id", campaign.ID),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (r *CampaignRunner) usableInbox(campaign *model.Campaign) (*model.Inbox, error) {
	inbox, err := r.InboxRepo.GetByID(campaign.InboxID)
	if err != nil {
		return nil, err
	}
	if inbox == nil {
		return nil, appErrors.NewUnsupportedChannel(campaign.ID, "none")
	}
	switch inbox.Channel {
	case model.ChannelAPI, model.ChannelWhatsApp, model.ChannelSMS, model.ChannelTwilioSMS:
		return inbox, nil
	default:
		return nil, appErrors.NewUnsupportedChannel(campaign.ID, inbox.Channel.String())
	}
}

// sendToContact is the per-contact unit of work; any error in the chain is a
// per-contact failure, isolated from the rest of the run.
func (r *CampaignRunner) sendToContact(campaign *model.Campaign, inbox *model.Inbox, contact *model.Contact) error {
	binding, err := r.Binder.Bind(contact, inbox)
	if err != nil {
		return err
	}
	conversation, err := r.Provisioner.Provision(binding, campaign)
	if err != nil {
		return err
	}
	_, err = r.Dispatcher.Dispatch(conversation, campaign, contact, inbox.Channel)
	return err
}

func (r *CampaignRunner) processPool(contacts []model.Contact, process func(model.Contact)) {
	jobs := make(chan model.Contact)
	var wg sync.WaitGroup
	for i := 0; i < r.Options.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for contact := range jobs {
				process(contact)
			}
		}()
	}
	for _, contact := range contacts {
		jobs <- contact
	}
	close(jobs)
	wg.Wait()
}
