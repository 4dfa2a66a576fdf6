package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/chatdesk-backend/internal/model"
)

func TestPlanActionsPairsAttachmentWithCaption(t *testing.T) {
	actions := []model.RuleAction{
		{ActionName: "send_attachment", ActionParams: []any{map[string]any{"blob_id": float64(4)}}},
		{ActionName: "send_message", ActionParams: []any{"here you go"}},
	}

	steps := planActions(actions)
	require.Len(t, steps, 1)
	assert.Equal(t, stepAttachmentSend, steps[0].Kind)
	assert.Equal(t, []int{4}, steps[0].BlobIDs)
	assert.Equal(t, "here you go", steps[0].Caption)
}

func TestPlanActionsKeepsNonMessageFollowerSeparate(t *testing.T) {
	actions := []model.RuleAction{
		{ActionName: "send_attachment", ActionParams: []any{float64(4)}},
		{ActionName: "resolve_conversation"},
	}

	steps := planActions(actions)
	require.Len(t, steps, 2)
	assert.Equal(t, stepAttachmentSend, steps[0].Kind)
	assert.Empty(t, steps[0].Caption)
	assert.Equal(t, stepSingle, steps[1].Kind)
	assert.Equal(t, "resolve_conversation", steps[1].Action.ActionName)
}

func TestPlanActionsEmptyCaptionIsNotConsumed(t *testing.T) {
	actions := []model.RuleAction{
		{ActionName: "send_attachment", ActionParams: []any{float64(4)}},
		{ActionName: "send_message", ActionParams: []any{""}},
	}

	steps := planActions(actions)
	require.Len(t, steps, 2)
	assert.Empty(t, steps[0].Caption)
	assert.Equal(t, "send_message", steps[1].Action.ActionName)
}

func TestPlanActionsNoBlobsLeavesMessageStandalone(t *testing.T) {
	actions := []model.RuleAction{
		{ActionName: "send_attachment", ActionParams: []any{"junk"}},
		{ActionName: "send_message", ActionParams: []any{"here you go"}},
	}

	steps := planActions(actions)
	require.Len(t, steps, 2)
	assert.Empty(t, steps[0].BlobIDs)
	assert.Empty(t, steps[0].Caption)
	assert.Equal(t, stepSingle, steps[1].Kind)
	assert.Equal(t, "send_message", steps[1].Action.ActionName)
}

func TestPlanActionsBlobIDShapes(t *testing.T) {
	actions := []model.RuleAction{
		{ActionName: "send_attachment", ActionParams: []any{
			map[string]any{"blob_id": float64(1)},
			float64(2),
			"3",
			float64(2), // duplicate dropped
			"junk",
		}},
	}

	steps := planActions(actions)
	require.Len(t, steps, 1)
	assert.Equal(t, []int{1, 2, 3}, steps[0].BlobIDs)
}

func TestPlanActionsPlainListPassesThrough(t *testing.T) {
	actions := []model.RuleAction{
		{ActionName: "assign_agent", ActionParams: []any{float64(2)}},
		{ActionName: "send_message", ActionParams: []any{"hi"}},
		{ActionName: "mute_conversation"},
	}

	steps := planActions(actions)
	require.Len(t, steps, 3)
	for _, step := range steps {
		assert.Equal(t, stepSingle, step.Kind)
	}
}
