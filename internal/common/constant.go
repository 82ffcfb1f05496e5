package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the admin
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultPrice is the unlock price (in ether) applied to records published
// without an explicit price.
const DefaultPrice = "0.0001"
