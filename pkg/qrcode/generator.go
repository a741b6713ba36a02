package qrcode

import (
	"encoding/base64"
	"errors"
	"os"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels used when size is not positive.
const DefaultSize = 256

// FilePerm is applied to written PNG files; they encode a secret.
const FilePerm os.FileMode = 0o600

// Generate encodes content as a PNG image.
func Generate(content string, size int) ([]byte, error) {
	q, err := build(content)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := q.PNG(size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return png, nil
}

// GenerateBase64Image returns the PNG as a data URI.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// WriteFile writes the PNG to path with FilePerm.
func WriteFile(content string, size int, path string) error {
	png, err := Generate(content, size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, FilePerm); err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	return nil
}

// Terminal renders content with half-block characters, two modules per
// line, for printing to a terminal. Set inverse for light-on-dark themes.
func Terminal(content string, inverse bool) (string, error) {
	q, err := build(content)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(inverse), nil
}

func build(content string) (*skipqrcode.QRCode, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	q, err := skipqrcode.New(content, skipqrcode.Medium)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return q, nil
}
