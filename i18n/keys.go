package i18n

// Message keys shared by the error sentinels of every package. Domain errors
// use these values as their TextCode so that httperr can localize them.
const (
	KeyUnableToSendEmail        = "jmpsl.communication.exception.UnableToSendEmailException"
	KeyIncorrectMailParameters  = "jmpsl.communication.exception.IncorrectMailParametersException"
	KeyNoHandlerFound           = "jmpsl.core.exception.NoHandlerFoundException"
	KeyMessageNotReadable       = "jmpsl.core.exception.HttpMessageNotReadableException"
	KeyInternalServerError      = "jmpsl.core.exception.InternalServerError"
	KeyUnableToPerformSftp      = "jmpsl.file.exception.UnableToPerformSftpActionException"
	KeyExternalFileServer       = "jmpsl.file.exception.ExternalFileServerMalfunctionException"
	KeyNotAcceptableExtension   = "jmpsl.file.exception.NotAcceptableFileExtensionException"
	KeyHashCodeFormat           = "jmpsl.file.exception.HashCodeFormatException"
	KeySendingFormFileNotExist  = "jmpsl.file.exception.SendingFormFileNotExistException"
	KeyImageDimensions          = "jmpsl.gfx.exception.ImageNotSupportedDimensionsException"
	KeyFontSizeNotSupported     = "jmpsl.gfx.exception.FontSizeNotSupportedException"
	KeyTooMuchInitials          = "jmpsl.gfx.exception.TooMuchInitialsCharactersException"
	KeyOAuth2Authentication     = "jmpsl.oauth2.exception.OAuth2AuthenticationProcessingException"
	KeyOAuth2SupplierNotImpl    = "jmpsl.oauth2.exception.OAuth2SupplierNotImplementedException"
	KeyOAuth2URINotSupported    = "jmpsl.oauth2.exception.OAuth2UriNotSupportedException"
	KeySecurityAuthentication   = "jmpsl.security.AuthenticationException"
	KeySecurityAccessDenied     = "jmpsl.security.AccessDeniedException"
	KeyOtaTokenNotFound         = "jmpsl.security.exception.OtaTokenNotFoundException"
	KeyOtaTokenExpired          = "jmpsl.security.exception.OtaTokenExpiredException"
	KeyOtaTokenUsed             = "jmpsl.security.exception.OtaTokenAlreadyUsedException"
	KeyOtaTokenMalformed        = "jmpsl.security.exception.OtaTokenMalformedException"
	KeyValidationEnumIsValid    = "jmpsl.core.validator.EnumIsValid"
	KeyValidationDateIsBefore   = "jmpsl.core.validator.DateIsBefore"
	KeyValidationPasswordsMatch = "jmpsl.core.validator.PasswordMatch"
	KeyValidationPhoneNumber    = "jmpsl.core.validator.PhoneNumber"
	KeyValidationOAuth2Supplier = "jmpsl.oauth2.validator.OAuth2Supplier"
)
