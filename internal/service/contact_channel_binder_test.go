package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/chatdesk-backend/internal/errors"
	"github.com/unclebandit/chatdesk-backend/internal/model"
	"github.com/unclebandit/chatdesk-backend/internal/service"
)

func TestBindIsIdempotent(t *testing.T) {
	repo := &fakeBindingRepo{}
	binder := &service.ContactChannelBinder{BindingRepo: repo, Log: zap.NewNop()}

	contact := &model.Contact{ID: 10, AccountID: 1, PhoneNumber: "+254712000001"}
	inbox := &model.Inbox{ID: 5, AccountID: 1, Channel: model.ChannelWhatsApp}

	first, err := binder.Bind(contact, inbox)
	require.NoError(t, err)
	second, err := binder.Bind(contact, inbox)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.SourceID, second.SourceID)
	assert.Len(t, repo.bindings, 1)
}

func TestBindWhatsAppSourceIDIsPhoneDigits(t *testing.T) {
	repo := &fakeBindingRepo{}
	binder := &service.ContactChannelBinder{BindingRepo: repo, Log: zap.NewNop()}

	contact := &model.Contact{ID: 10, PhoneNumber: "+254 712-000 001"}
	inbox := &model.Inbox{ID: 5, Channel: model.ChannelWhatsApp}

	binding, err := binder.Bind(contact, inbox)
	require.NoError(t, err)
	assert.Equal(t, "254712000001", binding.SourceID)
}

func TestBindBlankPhoneOnPhoneChannel(t *testing.T) {
	repo := &fakeBindingRepo{}
	binder := &service.ContactChannelBinder{BindingRepo: repo, Log: zap.NewNop()}

	contact := &model.Contact{ID: 10, PhoneNumber: "  "}
	inbox := &model.Inbox{ID: 5, Channel: model.ChannelSMS}

	_, err := binder.Bind(contact, inbox)
	var unresolvable *appErrors.ErrUnresolvableIdentity
	require.True(t, errors.As(err, &unresolvable))
	assert.Equal(t, 10, unresolvable.ContactID)
	assert.Empty(t, repo.bindings)
}

func TestBindAPISourceIDCarriesChannelAndContact(t *testing.T) {
	repo := &fakeBindingRepo{}
	binder := &service.ContactChannelBinder{BindingRepo: repo, Log: zap.NewNop()}

	contact := &model.Contact{ID: 10}
	inbox := &model.Inbox{ID: 5, Channel: model.ChannelAPI}

	binding, err := binder.Bind(contact, inbox)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(binding.SourceID, "api_10_"))
}

func TestBindRecoversFromUniqueViolation(t *testing.T) {
	repo := &fakeBindingRepo{conflictOnce: true}
	binder := &service.ContactChannelBinder{BindingRepo: repo, Log: zap.NewNop()}

	contact := &model.Contact{ID: 10, PhoneNumber: "254712000001"}
	inbox := &model.Inbox{ID: 5, Channel: model.ChannelWhatsApp}

	binding, err := binder.Bind(contact, inbox)
	require.NoError(t, err)
	// the concurrently-created row wins; no second row exists
	assert.Equal(t, "winner", binding.SourceID)
	assert.Len(t, repo.bindings, 1)
}
