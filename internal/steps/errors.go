package steps

import (
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/aws/smithy-go"

	"github.com/govlink/govlink/internal/bridge"
)

// isAlreadyInOrganization reports a handshake rejected because the target
// already belongs to an organization.
func isAlreadyInOrganization(err error) bool {
	var violation *types.HandshakeConstraintViolationException
	if errors.As(err, &violation) {
		return violation.Reason == types.HandshakeConstraintViolationExceptionReasonAlreadyInAnOrganization
	}

	return false
}

func isDuplicateHandshake(err error) bool {
	var duplicate *types.DuplicateHandshakeException
	return errors.As(err, &duplicate)
}

// isHandshakeSettled reports an acceptance that failed only because the
// handshake is already accepted.
func isHandshakeSettled(err error) bool {
	var inState *types.HandshakeAlreadyInStateException
	if errors.As(err, &inState) {
		return true
	}

	var apiErr *bridge.APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// needsMembershipCheck reports an acceptance error that means success only
// when the account is already a member. Organizations also rejects
// transitions out of DECLINED, CANCELED and EXPIRED with the same exception.
func needsMembershipCheck(err error) bool {
	var transition *types.InvalidHandshakeTransitionException
	if errors.As(err, &transition) {
		return true
	}

	return isAlreadyInOrganization(err)
}

func isDuplicateAccount(err error) bool {
	var duplicate *types.DuplicateAccountException
	return errors.As(err, &duplicate)
}

// APIErrorCode returns the service error code carried by err, or an empty
// string when err did not come back from an AWS API.
func APIErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return ""
}
