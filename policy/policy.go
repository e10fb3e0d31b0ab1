// Package policy decides who may message whom and who may manage a group.
// Every check is a pure function: it returns nil when the action is allowed
// and a typed apperrors failure otherwise.
package policy

import (
	"github.com/anjiri1684/chat_backend/apperrors"
	"github.com/anjiri1684/chat_backend/models"
	"github.com/google/uuid"
)

// BlockRelation is the block state between a sender and one counterpart.
type BlockRelation struct {
	SenderBlocksOther bool
	OtherBlocksSender bool
}

func (r BlockRelation) Any() bool {
	return r.SenderBlocksOther || r.OtherBlocksSender
}

func checkBlocks(rel BlockRelation) error {
	if rel.SenderBlocksOther {
		return apperrors.Forbidden("You have blocked this user. Cannot send messages.")
	}
	if rel.OtherBlocksSender {
		return apperrors.Forbidden("This user has blocked you. Cannot send messages.")
	}
	return nil
}

// CanMessageConversation gates a send into conv. rel is only consulted for
// one-to-one conversations, where it describes the sender and the other member.
func CanMessageConversation(senderID uuid.UUID, conv *models.Conversation, rel BlockRelation) error {
	if !conv.HasParticipant(senderID) {
		return apperrors.Forbidden("You are not a participant in this conversation.")
	}
	if conv.IsGroup {
		return nil
	}
	return checkBlocks(rel)
}

// CanMessageUser gates a legacy direct send.
func CanMessageUser(senderID, receiverID uuid.UUID, rel BlockRelation) error {
	if senderID == receiverID {
		return apperrors.InvalidArgument("Cannot send messages to yourself.")
	}
	return checkBlocks(rel)
}

func CanManageGroup(userID uuid.UUID, conv *models.Conversation) error {
	if !conv.IsGroup {
		return apperrors.InvalidArgument("Can only update group conversations")
	}
	if !conv.IsAdmin(userID) {
		return apperrors.Forbidden("Only group admin can update group info")
	}
	return nil
}

func CanAddParticipants(userID uuid.UUID, conv *models.Conversation) error {
	if !conv.IsGroup {
		return apperrors.InvalidArgument("Cannot add participants to a one-to-one chat")
	}
	if !conv.IsAdmin(userID) {
		return apperrors.Forbidden("Only group admin can add participants")
	}
	return nil
}

// CanRemoveParticipant allows the admin to remove anyone and any member to leave.
func CanRemoveParticipant(actorID, targetID uuid.UUID, conv *models.Conversation) error {
	if !conv.IsGroup {
		return apperrors.InvalidArgument("Cannot remove participants from a one-to-one chat")
	}
	if !conv.IsAdmin(actorID) && actorID != targetID {
		return apperrors.Forbidden("Only group admin can remove participants")
	}
	return nil
}

// NextAdmin picks the admin after leavingID is removed: unchanged unless
// leavingID is the admin, then the first remaining participant in join order.
func NextAdmin(conv *models.Conversation, leavingID uuid.UUID) *uuid.UUID {
	if !conv.IsAdmin(leavingID) {
		return nil
	}
	for _, id := range conv.ParticipantIDs() {
		if id != leavingID {
			next := id
			return &next
		}
	}
	return nil
}
