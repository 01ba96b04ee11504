package gfx

import (
	"bytes"
	"context"
	"image"
	"path"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-security/config"
	"github.com/goliatone/go-security/core"
	"github.com/goliatone/go-security/file"
	"golang.org/x/image/draw"
)

const fileNameRandomLength = 16

// RemoteStore keeps user images. Directories are relative to the store
// root; AppServerPath is the public prefix of stored files.
type RemoteStore interface {
	AppServerPath() string
	WriteFile(ctx context.Context, dir, name string, data []byte) error
	RemoveByPrefix(ctx context.Context, dir, prefix string) error
	RemoveDir(ctx context.Context, dir string) error
}

// BufferedImage is a stored image. UserHashCode names the user directory
// and must be kept by the caller for later updates.
type BufferedImage struct {
	file.BufferedFile
	UserHashCode string
}

// GeneratedUserImage is a stored default avatar.
type GeneratedUserImage struct {
	BufferedImage
	Background string
}

// SenderPayload is an uploaded image to resize and store.
type SenderPayload struct {
	Bytes             []byte
	PreferredWidth    int
	PreferredHeight   int
	UserID            string
	ImageUniquePrefix string
	UserHashCode      string
}

// DeletePayload identifies a stored image.
type DeletePayload struct {
	UserID            string
	ImageUniquePrefix string
	UserHashCode      string
}

type storePayload struct {
	data         []byte
	userID       string
	prefix       string
	userHashCode string
	ext          ImageExtension
}

// ServiceOption configures a UserImageService.
type ServiceOption func(*UserImageService)

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger Logger) ServiceOption {
	return func(s *UserImageService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// UserImageService stores generated and uploaded user images in per user
// directories named user{id}_{hashCode}.
type UserImageService struct {
	generator    *UserImageGenerator
	store        RemoteStore
	hashCodes    *file.HashCodeGenerator
	relativePath string
	logger       Logger
}

// NewUserImageService creates the service. Images are kept below
// cfg.StaticImagesContentPath when it is set.
func NewUserImageService(
	generator *UserImageGenerator,
	store RemoteStore,
	hashCodes *file.HashCodeGenerator,
	cfg config.Gfx,
	opts ...ServiceOption,
) *UserImageService {
	s := &UserImageService{
		generator:    generator,
		store:        store,
		hashCodes:    hashCodes,
		relativePath: strings.Trim(cfg.StaticImagesContentPath, "/"),
		logger:       defLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAndSave draws a default avatar and stores it.
func (s *UserImageService) GenerateAndSave(ctx context.Context, payload GeneratorPayload, ext ImageExtension) (*GeneratedUserImage, error) {
	generated, err := s.generator.Generate(payload, ext)
	if err != nil {
		return nil, err
	}

	stored, err := s.save(ctx, storePayload{
		data:         generated.Bytes,
		userID:       payload.UserID,
		prefix:       payload.ImageUniquePrefix,
		userHashCode: payload.UserHashCode,
		ext:          ext,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("created default image for user %s in %s", payload.UserID, stored.Location)
	return &GeneratedUserImage{
		BufferedImage: *stored,
		Background:    ConvertRGBToHex(generated.Background),
	}, nil
}

// SaveUserImage resizes an uploaded image to the preferred dimensions and
// stores it.
func (s *UserImageService) SaveUserImage(ctx context.Context, payload SenderPayload, ext ImageExtension) (*BufferedImage, error) {
	if !validImageSize(payload.PreferredWidth) || !validImageSize(payload.PreferredHeight) {
		return nil, ErrImageNotSupportedDimensions.Clone().
			WithMetadata(map[string]any{
				"min":    MinImageSize,
				"max":    MaxImageSize,
				"width":  payload.PreferredWidth,
				"height": payload.PreferredHeight,
			})
	}

	src, format, err := image.Decode(bytes.NewReader(payload.Bytes))
	if err != nil {
		notReadable := ErrImageNotReadable.Clone()
		notReadable.Source = err
		return nil, notReadable
	}

	dst := image.NewRGBA(image.Rect(0, 0, payload.PreferredWidth, payload.PreferredHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	data, err := Encode(dst, ext)
	if err != nil {
		return nil, err
	}

	stored, err := s.save(ctx, storePayload{
		data:         data,
		userID:       payload.UserID,
		prefix:       payload.ImageUniquePrefix,
		userHashCode: payload.UserHashCode,
		ext:          ext,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stored %s image for user %s in %s", format, payload.UserID, stored.Location)
	return stored, nil
}

// DeleteUserImage removes the images of a user that start with the given
// prefix.
func (s *UserImageService) DeleteUserImage(ctx context.Context, payload DeletePayload) error {
	if payload.UserID == "" || payload.UserHashCode == "" || payload.ImageUniquePrefix == "" {
		return errors.New("user id, hash code and image prefix are required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}
	if err := s.hashCodes.Check(payload.UserHashCode); err != nil {
		return err
	}

	dir := s.userDir(payload.UserID, payload.UserHashCode)
	if err := s.store.RemoveByPrefix(ctx, s.storeDir(dir), payload.ImageUniquePrefix); err != nil {
		return s.malfunction("delete", err)
	}

	s.logger.Info("removed %s image of user %s", payload.ImageUniquePrefix, payload.UserID)
	return nil
}

// DeleteUserImages removes the whole image directory of a user.
func (s *UserImageService) DeleteUserImages(ctx context.Context, userID, userHashCode string) error {
	if err := s.hashCodes.Check(userHashCode); err != nil {
		return err
	}
	if err := s.store.RemoveDir(ctx, s.storeDir(s.userDir(userID, userHashCode))); err != nil {
		return s.malfunction("delete_all", err)
	}
	return nil
}

func (s *UserImageService) save(ctx context.Context, payload storePayload) (*BufferedImage, error) {
	hashCode := payload.userHashCode
	if hashCode != "" {
		if err := s.hashCodes.Check(hashCode); err != nil {
			return nil, err
		}
		dir := s.storeDir(s.userDir(payload.userID, hashCode))
		if err := s.store.RemoveByPrefix(ctx, dir, payload.prefix); err != nil {
			return nil, s.malfunction("replace", err)
		}
	} else {
		hashCode = s.hashCodes.Generate()
	}

	dir := s.userDir(payload.userID, hashCode)
	name := payload.prefix + "_" + core.RandomNumeric(fileNameRandomLength) + "." + payload.ext.String()

	if err := s.store.WriteFile(ctx, s.storeDir(dir), name, payload.data); err != nil {
		return nil, s.malfunction("write", err)
	}

	return &BufferedImage{
		BufferedFile: file.BufferedFile{
			Bytes:    payload.data,
			Location: s.location(dir, name),
		},
		UserHashCode: hashCode,
	}, nil
}

func (s *UserImageService) userDir(userID, hashCode string) string {
	return "user" + userID + "_" + hashCode
}

func (s *UserImageService) storeDir(dir string) string {
	return path.Join(s.relativePath, dir)
}

func (s *UserImageService) location(dir, name string) string {
	parts := []string{strings.TrimRight(s.store.AppServerPath(), "/")}
	if s.relativePath != "" {
		parts = append(parts, s.relativePath)
	}
	parts = append(parts, dir, name)
	return strings.Join(parts, "/")
}

func (s *UserImageService) malfunction(op string, err error) error {
	s.logger.Error("image %s on external server failed: %v", op, err)
	malfunction := file.ErrExternalFileServerMalfunction.Clone().
		WithMetadata(map[string]any{"operation": op})
	malfunction.Source = err
	return malfunction
}

func validImageSize(n int) bool {
	return n >= MinImageSize && n <= MaxImageSize
}
