// Package file validates uploads and generates hash codes used to name
// remote directories.
package file

import (
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
)

// ContentType is an accepted upload type.
type ContentType struct {
	Extension string
	MIME      string
}

var (
	PNG  = ContentType{Extension: "png", MIME: "image/png"}
	JPEG = ContentType{Extension: "jpeg", MIME: "image/jpeg"}
	JPG  = ContentType{Extension: "jpg", MIME: "image/jpeg"}
)

func (t ContentType) String() string {
	return t.Extension
}

// BufferedFile is the encoded content of a file together with the location
// it was stored at.
type BufferedFile struct {
	Bytes    []byte
	Location string
}

// CheckExtensionSupported accepts header when its declared MIME type, or
// the extension of its file name when no type is declared, matches one of
// types.
func CheckExtensionSupported(header *multipart.FileHeader, types ...ContentType) error {
	if len(types) == 0 {
		return errors.New("at least one content type is required", errors.CategoryInternal)
	}
	if err := IsFileExist(header); err != nil {
		return err
	}

	declared := ""
	if header.Header != nil {
		if mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type")); err == nil {
			declared = strings.ToLower(mediaType)
		}
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))

	for _, t := range types {
		if declared != "" && declared == t.MIME {
			return nil
		}
		if declared == "" && ext == t.Extension {
			return nil
		}
	}

	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Extension
	}
	return ErrNotAcceptableFileExtension.Clone().WithMetadata(map[string]any{
		"extensions": strings.Join(names, ", "),
		"file_name":  header.Filename,
	})
}

// IsFileExist fails for a missing or empty upload.
func IsFileExist(header *multipart.FileHeader) error {
	if header == nil || header.Size == 0 {
		return ErrSendingFormFileNotExist.Clone()
	}
	return nil
}
