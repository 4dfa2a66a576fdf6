// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrUnresolvableIdentity means a contact has no usable address on the
// channel (e.g. blank phone number on a phone-based channel). Callers treat
// it as a per-contact failure, not a fatal one.
type ErrUnresolvableIdentity struct {
	ContactID int
	Channel   string
}

func (e *ErrUnresolvableIdentity) Error() string {
	return fmt.Sprintf("contact %d has no usable identity for channel %s", e.ContactID, e.Channel)
}

func NewUnresolvableIdentity(contactID int, channel string) error {
	return &ErrUnresolvableIdentity{ContactID: contactID, Channel: channel}
}

// ErrUnsupportedChannel is a configuration error: the campaign's inbox runs
// on a channel the dispatch pipeline cannot serve. The campaign must not be
// claimed or completed when this is raised.
type ErrUnsupportedChannel struct {
	CampaignID int
	Channel    string
}

func (e *ErrUnsupportedChannel) Error() string {
	return fmt.Sprintf("campaign %d: channel %s is not supported for dispatch", e.CampaignID, e.Channel)
}

func NewUnsupportedChannel(campaignID int, channel string) error {
	return &ErrUnsupportedChannel{CampaignID: campaignID, Channel: channel}
}

// ErrMissingContent is a configuration error: the campaign carries neither a
// message body nor a template payload.
type ErrMissingContent struct {
	CampaignID int
}

func (e *ErrMissingContent) Error() string {
	return fmt.Sprintf("campaign %d has no message and no template params", e.CampaignID)
}

func NewMissingContent(campaignID int) error {
	return &ErrMissingContent{CampaignID: campaignID}
}
