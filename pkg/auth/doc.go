// Package auth stores VK access tokens.
//
// Tokens are kept under a name ("default" unless told otherwise) in the
// first available TokenStore: the system keyring, an AES-GCM encrypted file
// under the user config directory, or read-only VKPROFILER_ACCESS_TOKEN.
package auth
