package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures so the HTTP layer can pick a status code
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindBadRequest
	KindConflict
	KindUpstream
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// ServiceError is a classified failure carrying a client-facing message
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NotFound creates a not-found error
func NotFound(message string) error {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

// Forbidden creates a permission error
func Forbidden(message string) error {
	return &ServiceError{Kind: KindForbidden, Message: message}
}

// BadRequest creates a validation error
func BadRequest(message string) error {
	return &ServiceError{Kind: KindBadRequest, Message: message}
}

// Conflict creates a uniqueness error
func Conflict(message string) error {
	return &ServiceError{Kind: KindConflict, Message: message}
}

// Unauthorized creates a credentials error
func Unauthorized(message string) error {
	return &ServiceError{Kind: KindUnauthorized, Message: message}
}

// Upstream wraps a failure of an external dependency such as the asset host
func Upstream(message string, err error) error {
	return &ServiceError{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf returns the kind of a service error, or KindInternal for anything else
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of a service error
func MessageOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// Common messages shared across services
const (
	MsgProductNotFound     = "Product not found"
	MsgSellerNotFound      = "Seller profile not found"
	MsgSellerNotApproved   = "Your seller account is not approved yet. Please wait for admin approval."
	MsgNotProductOwner     = "Not authorized to modify this product"
	MsgListingNotFound     = "Listing not found"
	MsgUserNotFound        = "User not found"
	MsgVariantNotFound     = "Variant not found"
	MsgOptionNotFound      = "Option not found"
	MsgReviewNotFound      = "Review not found"
	MsgAlreadyReviewed     = "Product already reviewed by this user"
	MsgAlreadyListed       = "Product already listed by seller"
	MsgImageUploadFailed   = "Image upload failed"
	MsgDefaultRejectReason = "Rejected by admin"
)
