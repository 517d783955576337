package profile

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	textCodeUnsupportedImage = "UNSUPPORTED_IMAGE_TYPE"
	textCodeMalformedAvatar  = "MALFORMED_AVATAR_URL"
)

// allowedImageTypes maps the accepted MIME subtypes to the file extension
// used in storage object paths. The allow-list is the boundary that keeps
// arbitrary content types and extensions out of storage paths.
var allowedImageTypes = map[string]string{
	"jpeg": "jpg",
	"jpg":  "jpg",
	"png":  "png",
	"webp": "webp",
	"gif":  "gif",
}

var dataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9]+);base64,`)

// ImageData is a decoded avatar payload ready for upload.
type ImageData struct {
	ContentType string
	Ext         string
	Data        []byte
}

// ParseImageData validates and decodes a base64 data URI carrying an avatar
// image. It rejects payloads without an image MIME prefix and payloads whose
// subtype is outside the allow-list, before any network call happens.
func ParseImageData(encoded string) (ImageData, error) {
	match := dataURIPattern.FindStringSubmatch(encoded)
	if match == nil {
		return ImageData{}, goerrors.New(
			"profilesync: avatar image must be a base64 data URI with an image MIME type",
			goerrors.CategoryValidation,
		).WithCode(goerrors.CodeBadRequest).WithTextCode(textCodeUnsupportedImage)
	}

	subtype := strings.ToLower(match[1])
	ext, ok := allowedImageTypes[subtype]
	if !ok {
		return ImageData{}, goerrors.New(
			fmt.Sprintf("profilesync: unsupported avatar image type %q, allowed types: jpeg, jpg, png, webp, gif", subtype),
			goerrors.CategoryValidation,
		).WithCode(goerrors.CodeBadRequest).WithTextCode(textCodeUnsupportedImage)
	}

	data, err := base64.StdEncoding.DecodeString(encoded[len(match[0]):])
	if err != nil {
		return ImageData{}, goerrors.Wrap(err, goerrors.CategoryValidation, "profilesync: avatar payload is not valid base64").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeUnsupportedImage)
	}

	return ImageData{
		ContentType: "image/" + subtype,
		Ext:         ext,
		Data:        data,
	}, nil
}

// ObjectPath derives the storage path for a new avatar. The millisecond
// timestamp component makes collisions under the owner's prefix practically
// impossible even across rapid re-uploads.
func ObjectPath(userID uuid.UUID, now time.Time, ext string) string {
	return fmt.Sprintf("%s/%s-%d.%s", userID, userID, now.UnixMilli(), ext)
}

// ObjectPathFromPublicURL recovers the {user_id}/{filename} object path from
// a storage public URL. The last two path segments must be a UUID directory
// and a non-empty filename; anything else fails loudly so a changed provider
// URL scheme cannot silently delete the wrong object.
func ObjectPathFromPublicURL(publicURL string) (string, error) {
	parsed, err := url.Parse(publicURL)
	if err != nil {
		return "", malformedAvatarURL(publicURL)
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 {
		return "", malformedAvatarURL(publicURL)
	}
	dir := segments[len(segments)-2]
	file := segments[len(segments)-1]
	if file == "" {
		return "", malformedAvatarURL(publicURL)
	}
	if _, err := uuid.Parse(dir); err != nil {
		return "", malformedAvatarURL(publicURL)
	}
	return dir + "/" + file, nil
}

func malformedAvatarURL(raw string) error {
	return goerrors.New(
		fmt.Sprintf("profilesync: avatar URL %q does not contain a {user_id}/{filename} object path", raw),
		goerrors.CategoryValidation,
	).WithCode(goerrors.CodeBadRequest).WithTextCode(textCodeMalformedAvatar)
}
