package entity

import "errors"

var (
	ErrPostNotFound         = errors.New("post not found")
	ErrInvalidLikeDelta     = errors.New("invalid like change value")
	ErrNoUploadFile         = errors.New("no image file uploaded")
	ErrUploadTooLarge       = errors.New("image file too large")
	ErrUnknownMediaCategory = errors.New("unknown media category")
)
