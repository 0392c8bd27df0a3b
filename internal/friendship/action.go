package friendship

import (
	"strings"

	"social-service/internal/apperrors"
	"social-service/internal/models"
)

// Action is a recipient's response to a friend request. The set of actions is
// closed: each variant names the status it moves an open request to.
type Action interface {
	target() models.FriendshipStatus
	String() string
}

// Accept makes the pair friends.
type Accept struct{}

// Reject closes the request for good.
type Reject struct{}

// MarkSeen records that the recipient opened the request without deciding.
type MarkSeen struct{}

func (Accept) target() models.FriendshipStatus   { return models.FriendshipAccepted }
func (Reject) target() models.FriendshipStatus   { return models.FriendshipRejected }
func (MarkSeen) target() models.FriendshipStatus { return models.FriendshipSeen }

func (Accept) String() string   { return "accept" }
func (Reject) String() string   { return "reject" }
func (MarkSeen) String() string { return "seen" }

// ParseAction maps the transport value to an Action. An empty value means the
// recipient only viewed the request.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return MarkSeen{}, nil
	case "accept":
		return Accept{}, nil
	case "reject":
		return Reject{}, nil
	default:
		return nil, apperrors.InvalidRequest("unknown action " + raw)
	}
}
