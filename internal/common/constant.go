package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// the "Bearer <access token>" credential.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"
