package common

// AuthorizationHeaderName carries the bearer session token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the expected authorization scheme prefix.
const BearerScheme = "Bearer"

// DefaultFolder is used when an upload does not name a folder.
const DefaultFolder = "gallery"
