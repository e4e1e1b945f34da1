package api

// DefaultMaxBodyBytes bounds request bodies. Credential payloads are tiny;
// anything near this limit is abuse, not a real client.
const DefaultMaxBodyBytes int64 = 64 << 10
