// Package testutil provides test fixtures shared across packages: a fake
// GitHub server covering the OAuth token endpoint and the REST endpoints used
// during authentication, plus small logging helpers.
package testutil
