// internal/service/audience_resolver.go
package service

import (
	"go.uber.org/zap"

	"github.com/unclebandit/chatdesk-backend/internal/model"
	"github.com/unclebandit/chatdesk-backend/internal/repository"
)

const audienceTypeLabel = "Label"

// AudienceResolver turns a campaign's stored audience definition into the
// deduplicated set of contacts it targets. Read-only; whether an empty
// result falls back to "all inbox contacts" is the runner's call.
type AudienceResolver struct {
	LabelRepo   repository.LabelRepositoryInterface
	ContactRepo repository.ContactRepositoryInterface
	Log         *zap.Logger
}

func (r *AudienceResolver) Resolve(campaign *model.Campaign) ([]model.Contact, error) {
	labelIDs := []int{}
	for _, entry := range campaign.Audience {
		// malformed entries (missing type or id) are skipped, not fatal
		if entry.Type != audienceTypeLabel || entry.ID == 0 {
			continue
		}
		labelIDs = append(labelIDs, entry.ID)
	}
	if len(labelIDs) == 0 {
		return []model.Contact{}, nil
	}

	// ids outside the campaign's account are silently filtered here
	titles, err := r.LabelRepo.TitlesByIDs(campaign.AccountID, labelIDs)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return []model.Contact{}, nil
	}

	contacts, err := r.ContactRepo.TaggedWithAny(campaign.AccountID, titles)
	if err != nil {
		return nil, err
	}

	deduped := dedupeContacts(contacts)
	r.Log.Debug("audience resolved",
		zap.Int("campaign_id", campaign.ID),
		zap.Strings("labels", titles),
		zap.Int("contacts", len(deduped)))
	return deduped, nil
}

func dedupeContacts(contacts []model.Contact) []model.Contact {
	seen := make(map[int]bool, len(contacts))
	out := contacts[:0]
	for _, c := range contacts {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
