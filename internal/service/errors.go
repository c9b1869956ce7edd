package service

import (
	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
)

// Failure kinds. Each matches errors.Is against itself and against the
// broad class sentinel (domainerrors.ErrNotFound, domainerrors.ErrConflict, ...).
var (
	ErrInvalidInput = domainerrors.ValidationReason("INVALID_INPUT", "invalid input")

	ErrTagNotFound     = domainerrors.NotFoundReason("TAG_NOT_FOUND", "tag not found")
	ErrFlagNotFound    = domainerrors.NotFoundReason("FLAG_NOT_FOUND", "flag not found")
	ErrFeedNotFound    = domainerrors.NotFoundReason("FEED_NOT_FOUND", "feed not found")
	ErrContentNotFound = domainerrors.NotFoundReason("CONTENT_NOT_FOUND", "freet not found")
	ErrUserNotFound    = domainerrors.NotFoundReason("USER_NOT_FOUND", "user not found")

	ErrDuplicateTag      = domainerrors.ConflictReason("DUPLICATE_TAG", "a tag with this content already exists")
	ErrDuplicateUsername = domainerrors.ConflictReason("DUPLICATE_USERNAME", "username is taken")
	ErrDuplicateKind     = domainerrors.ConflictReason("DUPLICATE_KIND", "freet already has an active flag of this kind")
	ErrAlreadyTagged     = domainerrors.ConflictReason("ALREADY_TAGGED", "freet already has this tag")
	ErrNotTagged         = domainerrors.ConflictReason("NOT_TAGGED", "freet does not have this tag")
	ErrAlreadyChallenged = domainerrors.ConflictReason("ALREADY_CHALLENGED", "user already challenged this flag")

	ErrUserAlreadySelected = domainerrors.ConflictReason("USER_ALREADY_SELECTED", "user is already selected in this feed")
	ErrUserNotSelected     = domainerrors.ConflictReason("USER_NOT_SELECTED", "user is not selected in this feed")
	ErrTagAlreadySelected  = domainerrors.ConflictReason("TAG_ALREADY_SELECTED", "tag is already selected in this feed")
	ErrTagNotSelected      = domainerrors.ConflictReason("TAG_NOT_SELECTED", "tag is not selected in this feed")

	ErrNotFeedOwner   = domainerrors.ForbiddenReason("NOT_FEED_OWNER", "only the feed owner may do this")
	ErrNotFreetAuthor = domainerrors.ForbiddenReason("NOT_FREET_AUTHOR", "only the freet author may do this")
)

// invalidInput turns a domain validation failure into ErrInvalidInput.
func invalidInput(err error) error {
	return ErrInvalidInput.WithMessage(err.Error())
}
