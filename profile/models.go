package profile

import (
	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// DefaultTable is the relational table holding profile rows.
const DefaultTable = "profiles"

// patchPayload renders a partial update as the wire payload for an upsert
// keyed on user_id. Unset patch fields stay out of the payload so the
// backend keeps their current values; a cleared AvatarURL becomes an
// explicit JSON null so the column is nulled rather than left alone.
func patchPayload(userID uuid.UUID, patch types.ProfilePatch) map[string]any {
	payload := map[string]any{
		"user_id": userID.String(),
	}
	if patch.FullName != nil {
		payload["full_name"] = *patch.FullName
	}
	if patch.Username != nil {
		payload["username"] = *patch.Username
	}
	if patch.Bio != nil {
		payload["bio"] = *patch.Bio
	}
	if patch.AvatarURL != nil {
		if *patch.AvatarURL == "" {
			payload["avatar_url"] = nil
		} else {
			payload["avatar_url"] = *patch.AvatarURL
		}
	}
	return payload
}

// AvatarPatch builds a patch that points the profile at url.
func AvatarPatch(url string) types.ProfilePatch {
	return types.ProfilePatch{AvatarURL: &url}
}

// ClearAvatarPatch builds a patch that nulls the avatar_url column.
func ClearAvatarPatch() types.ProfilePatch {
	empty := ""
	return types.ProfilePatch{AvatarURL: &empty}
}
