package usecase

import "errors"

// Error taxonomy. Validation and precondition failures reject without
// mutation; rate limiting fires before anything is created;
// collaborator failures land in Submission.Error instead of here.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidState         = errors.New("operation not allowed in current state")
	ErrRateLimited          = errors.New("too many submissions for this email, try again later")
	ErrInternal             = errors.New("internal error")
)
