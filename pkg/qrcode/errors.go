package qrcode

import "errors"

var (
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrFailedToGenerate  = errors.New("failed to generate QR code")
	ErrFailedToWriteFile = errors.New("failed to write QR code file")
)
