package security

// ValidationType classifies the outcome of a JWT check.
type ValidationType string

const (
	ValidationMalformed ValidationType = "MALFORMED"
	ValidationExpired   ValidationType = "EXPIRED"
	ValidationInvalid   ValidationType = "INVALID"
	ValidationOther     ValidationType = "OTHER"
	ValidationGood      ValidationType = "GOOD"
)

var validationMessages = map[ValidationType]string{
	ValidationMalformed: "Passed JSON Web Token is malformed.",
	ValidationExpired:   "Passed JSON Web Token is expired.",
	ValidationInvalid:   "Passed JSON Web Token is invalid.",
	ValidationOther:     "Some of the JSON Web Token claims are nullable.",
	ValidationGood:      "JSON Web Token is valid.",
}

// Message returns the human readable description of t.
func (t ValidationType) Message() string {
	return validationMessages[t]
}

func (t ValidationType) String() string {
	return string(t)
}

// ValidationResult is returned by JWTService.IsValid.
type ValidationResult struct {
	Valid bool
	Type  ValidationType
}

func (r ValidationResult) Message() string {
	return r.Type.Message()
}
