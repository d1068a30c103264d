package manager

import "errors"

var (
	ErrInvalidAccountID         = errors.New("account id must be a 12-digit numeric string")
	ErrReservedAccount          = errors.New("account id is reserved for administrative use")
	ErrAccountAlreadyRegistered = errors.New("account is already registered")
	ErrAccountNotFound          = errors.New("account not found")
	ErrLinkageImmutable         = errors.New("commercial linkage is already set and cannot be changed")
	ErrCommercialIDInUse        = errors.New("commercial account id is linked to another account")
	ErrRegisterAccount          = errors.New("failed to register account")
	ErrGetAccount               = errors.New("failed to get account")
	ErrListAccounts             = errors.New("failed to list accounts")
	ErrUpdateAccount            = errors.New("failed to update account")
	ErrEmitEvent                = errors.New("failed to emit event")
	ErrEmptyCostRequest         = errors.New("cost request names no account")
	ErrInvalidCostPeriod        = errors.New("cost period is invalid")
	ErrSaveCostReport           = errors.New("failed to save cost report")
	ErrListCostReports          = errors.New("failed to list cost reports")
)
