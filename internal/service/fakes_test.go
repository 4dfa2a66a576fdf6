package service_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/chatdesk-backend/internal/errors"
	"github.com/unclebandit/chatdesk-backend/internal/model"
)

// callRecorder keeps an ordered log of repository calls so tests can assert
// ordering (the claim must happen before any audience work).
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *callRecorder) indexOf(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.calls {
		if c == call {
			return i
		}
	}
	return -1
}

type fakeCampaignRepo struct {
	rec       *callRecorder
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
	claims    int
	sent      map[int]int
	failed    map[int]int
	claimErr  error
}

func newFakeCampaignRepo(rec *callRecorder, campaigns ...*model.Campaign) *fakeCampaignRepo {
	repo := &fakeCampaignRepo{
		rec:       rec,
		campaigns: map[int]*model.Campaign{},
		sent:      map[int]int{},
		failed:    map[int]int{},
	}
	for _, c := range campaigns {
		repo.campaigns[c.ID] = c
	}
	return repo
}

func (f *fakeCampaignRepo) Create(c *model.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = len(f.campaigns) + 1
	f.campaigns[c.ID] = c
	return nil
}

func (f *fakeCampaignRepo) Update(c *model.Campaign) error { return nil }

func (f *fakeCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (f *fakeCampaignRepo) ListCampaigns(offset, limit int, channel, status string) ([]*model.Campaign, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := []*model.Campaign{}
	for _, c := range f.campaigns {
		all = append(all, c)
	}
	total := len(all)
	if offset >= len(all) {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ClaimCompletion mimics the conditional UPDATE: only the active->completed
// transition reports a claim.
func (f *fakeCampaignRepo) ClaimCompletion(campaignID int) (bool, error) {
	f.rec.record("campaigns.ClaimCompletion")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return false, f.claimErr
	}
	c, ok := f.campaigns[campaignID]
	if !ok || c.Status != model.CampaignStatusActive {
		return false, nil
	}
	c.Status = model.CampaignStatusCompleted
	f.claims++
	return true, nil
}

func (f *fakeCampaignRepo) UpdateRunCounts(campaignID, sent, failed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[campaignID] = sent
	f.failed[campaignID] = failed
	return nil
}

func (f *fakeCampaignRepo) ListDue(now time.Time) ([]*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	due := []*model.Campaign{}
	for _, c := range f.campaigns {
		if c.Status == model.CampaignStatusActive && c.Enabled && c.ScheduledAt != nil && !c.ScheduledAt.After(now) {
			due = append(due, c)
		}
	}
	return due, nil
}

type fakeLabelRepo struct {
	rec    *callRecorder
	labels []model.Label
}

func (f *fakeLabelRepo) TitlesByIDs(accountID int, ids []int) ([]string, error) {
	f.rec.record("labels.TitlesByIDs")
	titles := []string{}
	for _, id := range ids {
		for _, l := range f.labels {
			if l.ID == id && l.AccountID == accountID {
				titles = append(titles, l.Title)
			}
		}
	}
	return titles, nil
}

type fakeContactRepo struct {
	contacts     []model.Contact
	tags         map[int][]string // contact id -> label titles
	inboxMembers map[int][]int    // inbox id -> contact ids
}

func (f *fakeContactRepo) GetByID(id int) (*model.Contact, error) {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			return &f.contacts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeContactRepo) TaggedWithAny(accountID int, titles []string) ([]model.Contact, error) {
	matched := []model.Contact{}
	for _, c := range f.contacts {
		if c.AccountID != accountID {
			continue
		}
		// one append per matching title, so duplicates reach the resolver
		for _, tag := range f.tags[c.ID] {
			for _, title := range titles {
				if tag == title {
					matched = append(matched, c)
				}
			}
		}
	}
	return matched, nil
}

func (f *fakeContactRepo) ListByInbox(inboxID int) ([]model.Contact, error) {
	members := []model.Contact{}
	for _, id := range f.inboxMembers[inboxID] {
		for _, c := range f.contacts {
			if c.ID == id {
				members = append(members, c)
			}
		}
	}
	return members, nil
}

type fakeInboxRepo struct {
	inboxes map[int]*model.Inbox
}

func (f *fakeInboxRepo) GetByID(id int) (*model.Inbox, error) {
	return f.inboxes[id], nil
}

type fakeBindingRepo struct {
	mu       sync.Mutex
	bindings []*model.ContactInbox
	nextID   int

	// failContacts forces Create to fail for the given contact ids
	failContacts map[int]error
	// conflictOnce makes the next Create fail with a unique violation while
	// registering the "winning" row, simulating a lost race
	conflictOnce bool
}

func (f *fakeBindingRepo) FindByContactAndInbox(contactID, inboxID int) (*model.ContactInbox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bindings {
		if b.ContactID == contactID && b.InboxID == inboxID {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBindingRepo) Create(binding *model.ContactInbox) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failContacts[binding.ContactID]; err != nil {
		return err
	}
	if f.conflictOnce {
		f.conflictOnce = false
		f.nextID++
		winner := &model.ContactInbox{
			ID:        f.nextID,
			ContactID: binding.ContactID,
			InboxID:   binding.InboxID,
			SourceID:  "winner",
		}
		f.bindings = append(f.bindings, winner)
		return &pq.Error{Code: "23505"}
	}
	f.nextID++
	binding.ID = f.nextID
	stored := *binding
	f.bindings = append(f.bindings, &stored)
	return nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations []*model.Conversation
	nextID        int
	createErr     error
	mutations     []string
}

func (f *fakeConversationRepo) LatestForContactInbox(contactInboxID int) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.Conversation
	for _, c := range f.conversations {
		if c.ContactInboxID != contactInboxID {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) || (c.CreatedAt.Equal(latest.CreatedAt) && c.ID > latest.ID) {
			latest = c
		}
	}
	return latest, nil
}

func (f *fakeConversationRepo) Create(c *model.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	c.ID = f.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Status == "" {
		c.Status = model.ConversationStatusOpen
	}
	f.conversations = append(f.conversations, c)
	return nil
}

func (f *fakeConversationRepo) mutate(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, call)
}

func (f *fakeConversationRepo) AssignAgent(conversationID, agentID int) error {
	f.mutate(fmt.Sprintf("assign_agent:%d", agentID))
	return nil
}

func (f *fakeConversationRepo) AssignTeam(conversationID, teamID int) error {
	f.mutate(fmt.Sprintf("assign_team:%d", teamID))
	return nil
}

func (f *fakeConversationRepo) AddLabels(conversationID int, labels []string) error {
	f.mutate(fmt.Sprintf("add_labels:%v", labels))
	return nil
}

func (f *fakeConversationRepo) RemoveLabels(conversationID int, labels []string) error {
	f.mutate(fmt.Sprintf("remove_labels:%v", labels))
	return nil
}

func (f *fakeConversationRepo) MuteConversation(conversationID int) error {
	f.mutate("mute")
	return nil
}

func (f *fakeConversationRepo) SnoozeConversation(conversationID int, until *time.Time) error {
	f.mutate("snooze")
	return nil
}

func (f *fakeConversationRepo) ResolveConversation(conversationID int) error {
	f.mutate("resolve")
	return nil
}

func (f *fakeConversationRepo) ReopenConversation(conversationID int) error {
	f.mutate("reopen")
	return nil
}

func (f *fakeConversationRepo) ChangePriority(conversationID int, priority string) error {
	f.mutate("priority:" + priority)
	return nil
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	messages  []*model.Message
	nextID    int
	createErr error
}

func (f *fakeMessageRepo) Create(m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	m.ID = f.nextID
	if m.MessageType == "" {
		m.MessageType = model.MessageTypeOutgoing
	}
	stored := *m
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeMessageRepo) CountForCampaign(campaignID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.messages {
		if id, ok := m.ContentAttributes["campaign_id"].(int); ok && id == campaignID {
			count++
		}
	}
	return count, nil
}

type fakeAgentRepo struct {
	agents []model.Agent
}

func (f *fakeAgentRepo) FirstForAccount(accountID int) (*model.Agent, error) {
	for i := range f.agents {
		if f.agents[i].AccountID == accountID {
			return &f.agents[i], nil
		}
	}
	return nil, nil
}

type fakeWebhookPublisher struct {
	urls     []string
	payloads []map[string]any
}

func (f *fakeWebhookPublisher) PublishWebhookEvent(url string, payload map[string]any) error {
	f.urls = append(f.urls, url)
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeTeamEmailer struct {
	teamIDs  []int
	messages []string
}

func (f *fakeTeamEmailer) SendEmailToTeam(teamID, conversationID int, message string) error {
	f.teamIDs = append(f.teamIDs, teamID)
	f.messages = append(f.messages, message)
	return nil
}

type fakeQueue struct {
	mu     sync.Mutex
	topics []string
	bodies [][]byte
}

func (f *fakeQueue) Publish(topic string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.bodies = append(f.bodies, body)
	return nil
}

func (f *fakeQueue) Subscribe(topic string, handler func(body []byte) error) error {
	return nil
}
