// Package config loads module settings from an optional file, environment
// variables and built in defaults using viper.
//
// Keys follow the jmpsl.<module>.<property> layout. Environment variables use
// the upper case key with dots and dashes replaced by underscores, e.g.
// JMPSL_SECURITY_JWT_SECRET.
package config

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/spf13/viper"
)

const TextCodeMissingProperty = "config_missing_property"

// ErrMissingProperty is returned when a required key has no value. The key
// is stored in the error metadata.
var ErrMissingProperty = errors.New("missing required configuration property", errors.CategoryValidation).
	WithTextCode(TextCodeMissingProperty).
	WithCode(errors.CodeInternal)

// Settings groups every configuration section.
type Settings struct {
	Security      Security
	OAuth2        OAuth2
	Core          Core
	Communication Communication
	SMTP          SMTP
	File          File
	Gfx           Gfx
	Logging       Logging
	Server        Server
}

type Security struct {
	OAuth2Active            bool
	OtaLength               int
	PasswordEncoderStrength int
	AppMode                 string
	JWT                     JWT
	CORS                    CORS
}

type JWT struct {
	Secret                  string
	Issuer                  string
	ExpiredMinutes          int
	RefreshTokenExpiredDays int
}

type CORS struct {
	Client string
	MaxAge int
}

type OAuth2 struct {
	CookieExpiredMinutes    int
	AvailableSuppliers      []string
	RedirectURIs            []string
	LinkedInEmailAddressURI string
	StateKey                string
	CallbackBaseURL         string
	Clients                 map[string]OAuth2Client
}

// OAuth2Client holds the credentials registered with a supplier.
type OAuth2Client struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
}

type Core struct {
	AvailableLocales []string
	DefaultLocale    string
	MessagesPath     string
}

type Communication struct {
	TemplatesDir  string
	RatePerSecond float64
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
	From     string
}

type File struct {
	SSH                     SSH
	SFTPServerURL           string
	BasicExternalServerPath string
	AppExternalServerPath   string
	HashCode                HashCode
}

type SSH struct {
	Active                 bool
	SocketHost             string
	SocketLogin            string
	KnownHostsFileName     string
	UserPrivateKeyFileName string
}

type HashCode struct {
	Separator        string
	CountOfSequences int
	SequenceLength   int
}

type Gfx struct {
	StaticImagesContentPath  string
	PreferredFontLink        string
	PreferredHexColors       []string
	PreferredForegroundColor string
}

type Logging struct {
	Level  string
	Format string
}

type Server struct {
	Address string
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	v          *viper.Viper
	configFile string
	overrides  map[string]any
}

// WithConfigFile reads path before environment variables are applied.
func WithConfigFile(path string) Option {
	return func(l *loader) {
		l.configFile = path
	}
}

// WithValues sets explicit values that take precedence over every other
// source.
func WithValues(values map[string]any) Option {
	return func(l *loader) {
		for k, v := range values {
			l.overrides[k] = v
		}
	}
}

// WithViper uses v instead of a fresh viper instance.
func WithViper(v *viper.Viper) Option {
	return func(l *loader) {
		if v != nil {
			l.v = v
		}
	}
}

// Load resolves the settings.
func Load(opts ...Option) (*Settings, error) {
	l := &loader{
		v:         viper.New(),
		overrides: map[string]any{},
	}
	for _, opt := range opts {
		opt(l)
	}

	v := l.v
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "unable to bind environment variable").
				WithMetadata(map[string]any{"key": key})
		}
	}

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "unable to read configuration file").
				WithMetadata(map[string]any{"file": l.configFile})
		}
	}

	for k, value := range l.overrides {
		v.Set(k, value)
	}

	s := build(v)

	if err := s.checkRequired(v); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func build(v *viper.Viper) *Settings {
	s := &Settings{
		Security: Security{
			OAuth2Active:            v.GetBool(KeySecurityOAuth2Active),
			OtaLength:               v.GetInt(KeySecurityOtaLength),
			PasswordEncoderStrength: v.GetInt(KeySecurityPasswordStrength),
			AppMode:                 v.GetString(KeySecurityAppMode),
			JWT: JWT{
				Secret:                  v.GetString(KeyJWTSecret),
				Issuer:                  v.GetString(KeyJWTIssuer),
				ExpiredMinutes:          v.GetInt(KeyJWTExpiredMinutes),
				RefreshTokenExpiredDays: v.GetInt(KeyJWTRefreshExpiredDays),
			},
			CORS: CORS{
				Client: v.GetString(KeyCORSClient),
				MaxAge: v.GetInt(KeyCORSMaxAge),
			},
		},
		OAuth2: OAuth2{
			CookieExpiredMinutes:    v.GetInt(KeyOAuth2CookieExpiredMinutes),
			AvailableSuppliers:      stringSlice(v, KeyOAuth2AvailableSuppliers),
			RedirectURIs:            stringSlice(v, KeyOAuth2RedirectURIs),
			LinkedInEmailAddressURI: v.GetString(KeyOAuth2LinkedInEmailURI),
			StateKey:                v.GetString(KeyOAuth2StateKey),
			CallbackBaseURL:         v.GetString(KeyOAuth2CallbackBaseURL),
			Clients:                 map[string]OAuth2Client{},
		},
		Core: Core{
			AvailableLocales: stringSlice(v, KeyCoreAvailableLocales),
			DefaultLocale:    v.GetString(KeyCoreDefaultLocale),
			MessagesPath:     v.GetString(KeyCoreMessagesPath),
		},
		Communication: Communication{
			TemplatesDir:  v.GetString(KeyMailTemplatesDir),
			RatePerSecond: v.GetFloat64(KeyMailRatePerSecond),
		},
		SMTP: SMTP{
			Host:     v.GetString(KeySMTPHost),
			Port:     v.GetInt(KeySMTPPort),
			Username: v.GetString(KeySMTPUsername),
			Password: v.GetString(KeySMTPPassword),
			TLS:      v.GetBool(KeySMTPTLS),
			From:     v.GetString(KeySMTPFrom),
		},
		File: File{
			SSH: SSH{
				Active:                 v.GetBool(KeySSHActive),
				SocketHost:             v.GetString(KeySSHSocketHost),
				SocketLogin:            v.GetString(KeySSHSocketLogin),
				KnownHostsFileName:     v.GetString(KeySSHKnownHosts),
				UserPrivateKeyFileName: v.GetString(KeySSHPrivateKey),
			},
			SFTPServerURL:           v.GetString(KeySFTPServerURL),
			BasicExternalServerPath: v.GetString(KeyFileBasicServerPath),
			AppExternalServerPath:   v.GetString(KeyFileAppServerPath),
			HashCode: HashCode{
				Separator:        v.GetString(KeyHashCodeSeparator),
				CountOfSequences: v.GetInt(KeyHashCodeCount),
				SequenceLength:   v.GetInt(KeyHashCodeLength),
			},
		},
		Gfx: Gfx{
			StaticImagesContentPath:  v.GetString(KeyGfxStaticImagesPath),
			PreferredFontLink:        v.GetString(KeyGfxFontLink),
			PreferredHexColors:       stringSlice(v, KeyGfxHexColors),
			PreferredForegroundColor: v.GetString(KeyGfxForegroundColor),
		},
		Logging: Logging{
			Level:  v.GetString(KeyLoggingLevel),
			Format: v.GetString(KeyLoggingFormat),
		},
		Server: Server{
			Address: v.GetString(KeyServerAddress),
		},
	}

	for _, supplier := range s.OAuth2.AvailableSuppliers {
		prefix := KeyOAuth2ClientPrefix + "." + supplier
		s.OAuth2.Clients[supplier] = OAuth2Client{
			ClientID:     envOrKey(v, prefix+".client-id"),
			ClientSecret: envOrKey(v, prefix+".client-secret"),
			Scopes:       stringSlice(v, prefix+".scopes"),
		}
	}

	return s
}

func envOrKey(v *viper.Viper, key string) string {
	_ = v.BindEnv(key)
	return v.GetString(key)
}

// stringSlice accepts YAML lists as well as comma separated strings.
func stringSlice(v *viper.Viper, key string) []string {
	_ = v.BindEnv(key)

	var raw []string
	switch value := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(value, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (s *Settings) checkRequired(v *viper.Viper) error {
	required := []string{
		KeyJWTSecret,
		KeyJWTIssuer,
		KeyCORSClient,
	}
	if s.Security.OAuth2Active {
		required = append(required, KeyOAuth2AvailableSuppliers, KeyOAuth2RedirectURIs)
	}
	if s.File.SSH.Active {
		required = append(required, KeySSHSocketLogin, KeyFileBasicServerPath)
	}

	for _, key := range required {
		value := v.Get(key)
		missing := value == nil
		switch typed := value.(type) {
		case string:
			missing = strings.TrimSpace(typed) == ""
		case []any:
			missing = len(typed) == 0
		case []string:
			missing = len(typed) == 0
		}
		if missing {
			return ErrMissingProperty.Clone().WithMetadata(map[string]any{"key": key})
		}
	}
	return nil
}

// Validate checks the ranges of numeric and enumerated settings.
func (s *Settings) Validate() error {
	if err := validation.ValidateStruct(&s.Security,
		validation.Field(&s.Security.OtaLength, validation.Min(1)),
		validation.Field(&s.Security.PasswordEncoderStrength, validation.Min(4), validation.Max(31)),
		validation.Field(&s.Security.AppMode, validation.In("dev", "prod", "qatest")),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&s.Security.JWT,
		validation.Field(&s.Security.JWT.ExpiredMinutes, validation.Min(1)),
		validation.Field(&s.Security.JWT.RefreshTokenExpiredDays, validation.Min(1)),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&s.OAuth2,
		validation.Field(&s.OAuth2.CookieExpiredMinutes, validation.Min(1)),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&s.File.HashCode,
		validation.Field(&s.File.HashCode.CountOfSequences, validation.Min(1)),
		validation.Field(&s.File.HashCode.SequenceLength, validation.Min(1)),
	); err != nil {
		return err
	}

	return validation.ValidateStruct(&s.Communication,
		validation.Field(&s.Communication.RatePerSecond, validation.Min(0.0)),
	)
}
