package config

const (
	KeySecurityOAuth2Active     = "jmpsl.security.oauth2-active"
	KeySecurityOtaLength        = "jmpsl.security.ota.length"
	KeySecurityPasswordStrength = "jmpsl.security.password-encoder-strength"
	KeySecurityAppMode          = "jmpsl.security.app-mode"
	KeyJWTSecret                = "jmpsl.security.jwt.secret"
	KeyJWTIssuer                = "jmpsl.security.jwt.issuer"
	KeyJWTExpiredMinutes        = "jmpsl.security.jwt.expired-minutes"
	KeyJWTRefreshExpiredDays    = "jmpsl.security.jwt.refresh-token-expired-days"
	KeyCORSClient               = "jmpsl.security.cors.client"
	KeyCORSMaxAge               = "jmpsl.security.cors.max-age"

	KeyOAuth2CookieExpiredMinutes = "jmpsl.oauth2.cookie-expired-minutes"
	KeyOAuth2AvailableSuppliers   = "jmpsl.oauth2.available-suppliers"
	KeyOAuth2RedirectURIs         = "jmpsl.oauth2.redirect-uris"
	KeyOAuth2LinkedInEmailURI     = "jmpsl.oauth2.linkedin.email-address-uri"
	KeyOAuth2StateKey             = "jmpsl.oauth2.state-key"
	KeyOAuth2CallbackBaseURL      = "jmpsl.oauth2.callback-base-url"
	KeyOAuth2ClientPrefix         = "jmpsl.oauth2.client"

	KeyCoreAvailableLocales = "jmpsl.core.locale.available-locales"
	KeyCoreDefaultLocale    = "jmpsl.core.locale.default-locale"
	KeyCoreMessagesPath     = "jmpsl.core.locale.messages-path"

	KeyMailTemplatesDir  = "jmpsl.communication.mail.templates-dir"
	KeyMailRatePerSecond = "jmpsl.communication.mail.rate-per-second"

	KeySMTPHost     = "jmpsl.communication.smtp.host"
	KeySMTPPort     = "jmpsl.communication.smtp.port"
	KeySMTPUsername = "jmpsl.communication.smtp.username"
	KeySMTPPassword = "jmpsl.communication.smtp.password"
	KeySMTPTLS      = "jmpsl.communication.smtp.tls"
	KeySMTPFrom     = "jmpsl.communication.smtp.from"

	KeySSHActive           = "jmpsl.file.ssh.active"
	KeySSHSocketHost       = "jmpsl.file.ssh.socket-host"
	KeySSHSocketLogin      = "jmpsl.file.ssh.socket-login"
	KeySSHKnownHosts       = "jmpsl.file.ssh.known-hosts-file-name"
	KeySSHPrivateKey       = "jmpsl.file.ssh.user-private-key-file-name"
	KeySFTPServerURL       = "jmpsl.file.sftp.server-url"
	KeyFileBasicServerPath = "jmpsl.file.basic-external-server-path"
	KeyFileAppServerPath   = "jmpsl.file.app-external-server-path"
	KeyHashCodeSeparator   = "jmpsl.file.hash-code.separator"
	KeyHashCodeCount       = "jmpsl.file.hash-code.count-of-sequences"
	KeyHashCodeLength      = "jmpsl.file.hash-code.sequence-length"

	KeyGfxStaticImagesPath = "jmpsl.gfx.user-gfx.static-images-content-path"
	KeyGfxFontLink         = "jmpsl.gfx.user-gfx.preferred-font-link"
	KeyGfxHexColors        = "jmpsl.gfx.user-gfx.preferred-hex-colors"
	KeyGfxForegroundColor  = "jmpsl.gfx.user-gfx.preferred-foreground-color"

	KeyLoggingLevel  = "jmpsl.logging.level"
	KeyLoggingFormat = "jmpsl.logging.format"
	KeyServerAddress = "jmpsl.server.address"
)

// LinkedInEmailAddressURI is the default LinkedIn e-mail endpoint.
const LinkedInEmailAddressURI = "https://api.linkedin.com/v2/emailAddress?q=members&projection=(elements*(handle~))"

var defaults = map[string]any{
	KeySecurityOAuth2Active:     false,
	KeySecurityOtaLength:        10,
	KeySecurityPasswordStrength: 10,
	KeySecurityAppMode:          "dev",
	KeyJWTExpiredMinutes:        5,
	KeyJWTRefreshExpiredDays:    90,
	KeyCORSMaxAge:               3600,

	KeyOAuth2CookieExpiredMinutes: 3,
	KeyOAuth2LinkedInEmailURI:     LinkedInEmailAddressURI,

	KeyCoreAvailableLocales: "en_US",
	KeyCoreDefaultLocale:    "en_US",
	KeyCoreMessagesPath:     "",

	KeyMailTemplatesDir:  "templates",
	KeyMailRatePerSecond: 5,

	KeySMTPPort: 587,
	KeySMTPTLS:  true,

	KeySSHActive:           true,
	KeySSHSocketHost:       "127.0.0.1",
	KeySSHKnownHosts:       "known_hosts.dat",
	KeySSHPrivateKey:       "id_rsa",
	KeySFTPServerURL:       "127.0.0.1",
	KeyFileAppServerPath:   "",
	KeyHashCodeSeparator:   "-",
	KeyHashCodeCount:       4,
	KeyHashCodeLength:      5,
	KeyGfxStaticImagesPath: "",
	KeyGfxForegroundColor:  "#ffffff",

	KeyLoggingLevel:  "info",
	KeyLoggingFormat: "text",
	KeyServerAddress: ":8080",
}

// keys lists every key bound to an environment variable.
var keys = []string{
	KeySecurityOAuth2Active, KeySecurityOtaLength, KeySecurityPasswordStrength,
	KeySecurityAppMode, KeyJWTSecret, KeyJWTIssuer, KeyJWTExpiredMinutes,
	KeyJWTRefreshExpiredDays, KeyCORSClient, KeyCORSMaxAge,
	KeyOAuth2CookieExpiredMinutes, KeyOAuth2AvailableSuppliers, KeyOAuth2RedirectURIs,
	KeyOAuth2LinkedInEmailURI, KeyOAuth2StateKey, KeyOAuth2CallbackBaseURL,
	KeyCoreAvailableLocales, KeyCoreDefaultLocale, KeyCoreMessagesPath,
	KeyMailTemplatesDir, KeyMailRatePerSecond,
	KeySMTPHost, KeySMTPPort, KeySMTPUsername, KeySMTPPassword, KeySMTPTLS, KeySMTPFrom,
	KeySSHActive, KeySSHSocketHost, KeySSHSocketLogin, KeySSHKnownHosts, KeySSHPrivateKey,
	KeySFTPServerURL, KeyFileBasicServerPath, KeyFileAppServerPath,
	KeyHashCodeSeparator, KeyHashCodeCount, KeyHashCodeLength,
	KeyGfxStaticImagesPath, KeyGfxFontLink, KeyGfxHexColors, KeyGfxForegroundColor,
	KeyLoggingLevel, KeyLoggingFormat, KeyServerAddress,
}
