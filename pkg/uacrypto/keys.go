package uacrypto

// ChannelKeys holds the six keys derived from (clientNonce,
// serverNonce) for one security token: a signing key, encryption key,
// and IV for each direction. Invariant 3 (spec §8): the two signing
// keys differ, and all six outputs are a deterministic function of
// (clientNonce, serverNonce, policy).
type ChannelKeys struct {
	ClientSigningKey    []byte
	ClientEncryptingKey []byte
	ClientIV            []byte

	ServerSigningKey    []byte
	ServerEncryptingKey []byte
	ServerIV            []byte
}
