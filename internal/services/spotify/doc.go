// Package spotify provides a minimal Spotify Web API client covering the
// catalog reads cratedig performs: playlist, album, and track lookups under
// the client-credentials grant. Tokens are fetched lazily and refreshed
// before expiry; rate-limit responses are honored via Retry-After.
package spotify
