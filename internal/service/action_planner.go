// internal/service/action_planner.go
package service

import "github.com/unclebandit/chatdesk-backend/internal/model"

// Planning is the first pass over a rule's action list. It resolves the
// ordering-dependent pairing up front: a send_attachment immediately
// followed by a send_message collapses into one attachment-send step whose
// caption is the message content, consuming both actions. Execution then
// walks the flat step list with no index bookkeeping.

type stepKind int

const (
	stepSingle stepKind = iota
	stepAttachmentSend
)

type plannedStep struct {
	Kind stepKind

	// stepSingle
	Action model.RuleAction

	// stepAttachmentSend
	BlobIDs []int
	Caption string
}

func planActions(actions []model.RuleAction) []plannedStep {
	steps := []plannedStep{}
	for i := 0; i < len(actions); i++ {
		action := actions[i]
		if action.ActionName != "send_attachment" {
			steps = append(steps, plannedStep{Kind: stepSingle, Action: action})
			continue
		}

		step := plannedStep{
			Kind:    stepAttachmentSend,
			BlobIDs: blobIDParams(action.ActionParams),
		}
		// an attachment with no usable blobs sends nothing, so a following
		// send_message must stay a standalone message
		if len(step.BlobIDs) > 0 && i+1 < len(actions) && actions[i+1].ActionName == "send_message" {
			if caption := firstStringParam(actions[i+1].ActionParams); caption != "" {
				step.Caption = caption
				i++ // the caption action is consumed by the pairing
			}
		}
		steps = append(steps, step)
	}
	return steps
}
