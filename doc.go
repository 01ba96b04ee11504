// Package security issues and validates JSON Web Tokens, generates one time
// access (OTA) tokens, hashes passwords and models the authenticated user.
//
// Tokens:
//   - JWTService signs HS256 tokens with a base64 encoded secret. IsValid
//     classifies a token as GOOD, MALFORMED, EXPIRED, INVALID or OTHER, and
//     ValidateRefreshToken extracts the numeric user id of a token that is
//     expired but otherwise intact.
//   - OtaTokenService produces random alphanumeric tokens of a fixed length.
//     IssueOtaTokenHandler and ConsumeOtaTokenHandler persist them through
//     the RepositoryManager so a token can only be redeemed once.
//
// Users:
//   - AuthUserModel is implemented by application user entities. FabricateUser
//     wraps a model into an AuthUser with its granted roles, which the jwtware
//     middleware stores on the request context.
//
// Subpackages provide the remaining modules: core, oauth2, communication,
// file and gfx.
package security
