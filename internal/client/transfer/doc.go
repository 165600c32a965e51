// Package transfer drives document uploads and downloads for the CLI.
//
// The write path encrypts locally, asks the server for a one-time upload
// slot, PUTs the container to object storage and finally registers the
// record. The read path asks the server for a short-lived URL (which it only
// issues to the owner), fetches the container and decrypts it locally.
// Plaintext and passphrases never leave this process.
//
// Nothing here retries. A failed Upload is abandoned; calling Upload again
// starts over with a new slot.
package transfer
