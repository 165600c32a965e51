// Package cryptox implements the passphrase container codec and the
// account-credential helpers.
//
// # Container format (version 1)
//
//	offset  size  field
//	0       1     format version (0x01)
//	1       16    Argon2id salt
//	17      24    XChaCha20-Poly1305 nonce
//	41      n+16  ciphertext ‖ Poly1305 tag
//
// The 41-byte header is bound to the ciphertext as associated data. The
// AEAD key is HKDF-SHA-512(Argon2id(passphrase, salt), info="docvault:container:v1").
// Argon2id parameters are fixed per format version: time=3, memory=64 MiB,
// threads=4, 32-byte output. Decryption therefore needs only the container
// and the passphrase.
package cryptox
