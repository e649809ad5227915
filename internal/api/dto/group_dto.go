package dto

import (
	"time"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// GroupRequest payload for creating or updating a chat group.
type GroupRequest struct {
	Name       string `json:"name"`
	InviteLink string `json:"invite_link"`
	Capacity   int    `json:"capacity"`
}

// GroupResponse is the group view. The invite link is only present for
// the applicant assigned to the group and for staff.
type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InviteLink  string    `json:"invite_link,omitempty"`
	Capacity    int       `json:"capacity"`
	MemberCount int       `json:"member_count"`
	Full        bool      `json:"full"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewGroupResponse maps the domain model, optionally hiding the link.
func NewGroupResponse(group *domain.Group, includeLink bool) GroupResponse {
	resp := GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Capacity:    group.Capacity,
		MemberCount: group.MemberCount,
		Full:        group.IsFull(),
		CreatedAt:   group.CreatedAt,
	}
	if includeLink {
		resp.InviteLink = group.InviteLink
	}
	return resp
}

// NewGroupListResponse maps a slice of groups.
func NewGroupListResponse(groups []domain.Group, includeLink bool) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, NewGroupResponse(&groups[i], includeLink))
	}
	return out
}
