// internal/service/contact_channel_binder.go
package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/chatdesk-backend/internal/errors"
	"github.com/unclebandit/chatdesk-backend/internal/model"
	"github.com/unclebandit/chatdesk-backend/internal/repository"
)

// ContactChannelBinder gives a contact an address on an inbox, creating the
// binding lazily. Lookup-before-create plus the unique constraint on
// (contact_id, inbox_id) keeps bindings from duplicating even under
// concurrent binds.
type ContactChannelBinder struct {
	BindingRepo repository.ContactInboxRepositoryInterface
	Log         *zap.Logger
}

func (b *ContactChannelBinder) Bind(contact *model.Contact, inbox *model.Inbox) (*model.ContactInbox, error) {
	existing, err := b.BindingRepo.FindByContactAndInbox(contact.ID, inbox.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	sourceID, err := sourceIDFor(contact, inbox.Channel)
	if err != nil {
		return nil, err
	}

	binding := &model.ContactInbox{
		ContactID: contact.ID,
		InboxID:   inbox.ID,
		SourceID:  sourceID,
	}
	if err := b.BindingRepo.Create(binding); err != nil {
		if repository.IsUniqueViolation(err) {
			// a concurrent bind won the race; its row is the binding
			winner, ferr := b.BindingRepo.FindByContactAndInbox(contact.ID, inbox.ID)
			if ferr != nil {
				return nil, ferr
			}
			if winner == nil {
				return nil, fmt.Errorf("contact %d inbox %d: binding vanished after unique violation", contact.ID, inbox.ID)
			}
			return winner, nil
		}
		return nil, err
	}
	b.Log.Debug("contact inbox created",
		zap.Int("contact_id", contact.ID),
		zap.Int("inbox_id", inbox.ID),
		zap.String("source_id", sourceID))
	return binding, nil
}

// sourceIDFor synthesizes the channel-specific external identifier. Phone
// channels require a pure-digit id derived from the phone number, so the
// same contact always rebinds to the same identifier. Other channels get a
// salted id; the persistence constraint covers the rebind race there.
func sourceIDFor(contact *model.Contact, kind model.ChannelKind) (string, error) {
	if kind.PhoneBased() {
		digits := digitsOnly(contact.PhoneNumber)
		if digits == "" {
			return "", appErrors.NewUnresolvableIdentity(contact.ID, kind.String())
		}
		return digits, nil
	}
	return fmt.Sprintf("%s_%d_%s", kind.String(), contact.ID, uuid.NewString()), nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
