package attendance

import (
	"errors"
	"fmt"
)

// Code is the machine-readable reason a scan was rejected.
type Code string

const (
	CodeBadRequest          Code = "BAD_REQUEST"
	CodeDeviceNotRegistered Code = "DEVICE_NOT_REGISTERED"
	CodeDeviceMismatch      Code = "DEVICE_MISMATCH"
	CodeTokenNotFound       Code = "TOKEN_NOT_FOUND"
	CodeTokenForeignOrg     Code = "TOKEN_FOREIGN_ORG"
	CodeAlreadyCheckedIn    Code = "ALREADY_CHECKED_IN"
	CodeNoOpenSession       Code = "NO_OPEN_SESSION"
	CodeTokenExpired        Code = "TOKEN_EXPIRED"
	CodeOutOfRange          Code = "OUT_OF_RANGE"
	CodeSpoofingSuspected   Code = "SPOOFING_SUSPECTED"
)

var (
	ErrAlreadyCheckedIn   = errors.New("already checked in, please check out before checking in again")
	ErrNoOpenSession      = errors.New("no active check-in found, please check in first")
	ErrQRCodeExpired      = errors.New("qr code has expired, please request a new qr code")
	ErrOutOfRange         = errors.New("you are not within the organization premises")
	ErrSpoofingSuspected  = errors.New("potential location spoofing detected")
	ErrInvalidScanRequest = errors.New("code and current location are required")
)

// ScanError is a rejected scan. Err is the domain sentinel, Details is safe to show the client.
// DailySummary is set once the user and organization are known, so BAD_REQUEST carries none.
type ScanError struct {
	Code         Code
	Err          error
	Details      map[string]any
	DailySummary *DailySummary
}

func NewScanError(code Code, err error, details map[string]any) *ScanError {
	return &ScanError{Code: code, Err: err, Details: details}
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
