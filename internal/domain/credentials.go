package domain

// Profile is the stored credential record: the gateway API key plus the
// derived password hash and its salt, both hex-encoded. The hashing scheme
// itself belongs to the credential store.
type Profile struct {
	APIKey       string `json:"api_key"`
	PasswordHash string `json:"password_hash"`
	PasswordSalt string `json:"password_salt"`
}
