// Package spake2 implements the SPAKE2 password-authenticated key exchange
// used by adb wireless pairing.
//
// Both endpoints know the same, possibly low-entropy, password (the pairing
// code followed by keying material exported from the TLS connection). Each
// side sends one public message and derives a 16 byte AES-128-GCM key with
// HKDF-SHA256 and the label "adb pairing_auth aes-128-gcm key". The default
// ciphersuite produces the same messages and keys as BoringSSL's SPAKE2,
// which is what adbd runs.
//
// Basic usage:
//
//	client, err := spake2.New(spake2.Initiator, spake2.DefaultOptions())
//	if err != nil {
//	    // handle error
//	}
//	defer client.Destroy()
//
//	msgA, err := client.GenerateMessage(password)
//	if err != nil {
//	    // handle error
//	}
//
//	// Send msgA to the peer, receive msgB.
//
//	key, err := client.ProcessMessage(msgB)
//	if err != nil {
//	    // handle error
//	}
//
// Each Context handles exactly one run. Any failure is terminal; start over
// with a new Context. Errors are sentinel values to be matched with
// errors.Is and never carry password or key bytes.
package spake2
