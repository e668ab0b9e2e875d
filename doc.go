// Package auth provides stateless token based authentication for the
// product API: JWT issuance and validation, credential management, and a
// per request identity pipeline.
//
// Token lifecycle:
//   - TokenService signs HS256 JWTs with the identity's email as subject and
//     the role set in a comma joined claim. Validation enforces the signing
//     method, the hard expiry boundary, and optional issuer/audience, and
//     classifies every failure as expired, bad signature, or malformed.
//
// Request pipeline:
//   - middleware/jwtware extracts the bearer token, validates it, resolves
//     the identity through the Authenticator's read-through cache, and
//     stores the projection in the request context. Any failure downgrades
//     the request to anonymous; jwtware.Require handles rejection on
//     protected routes so authentication and authorization stay separate.
//
// Credentials:
//   - Auther implements login, registration, and password updates over a
//     CredentialStore backed by Bun. Password changes invalidate the
//     identity cache entry before returning, and login failures are
//     indistinguishable between unknown emails and wrong passwords.
package auth
