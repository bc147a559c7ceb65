package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
)

// signatureSize is the length of an ed25519 signature in a Solana
// transaction.
const signatureSize = 64

// Wallet is the trading keypair. It signs the versioned transactions
// returned by the order endpoint.
type Wallet struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewWallet parses a base58-encoded 64-byte ed25519 secret key, the format
// exported by Solana wallets.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	raw, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("solana: decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("solana: private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	priv := ed25519.PrivateKey(raw)
	return &Wallet{
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// PublicKey returns the wallet's base58 public key.
func (w *Wallet) PublicKey() string {
	return base58.Encode(w.pub)
}

// SignTransaction signs a base64-encoded unsigned transaction and returns it
// base64-encoded with the fee-payer signature filled in. The order endpoint
// builds transactions with the taker as fee payer, so the wallet always owns
// the first signature slot.
func (w *Wallet) SignTransaction(txBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("solana: decode transaction: %w", err)
	}

	sigCount, sigOffset, err := decodeShortvecLen(raw)
	if err != nil {
		return "", fmt.Errorf("solana: parse transaction: %w", err)
	}
	if sigCount == 0 {
		return "", fmt.Errorf("solana: transaction has no signature slots")
	}

	msgOffset := sigOffset + sigCount*signatureSize
	if msgOffset >= len(raw) {
		return "", fmt.Errorf("solana: transaction truncated")
	}

	sig := ed25519.Sign(w.priv, raw[msgOffset:])
	copy(raw[sigOffset:sigOffset+signatureSize], sig)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeShortvecLen reads a compact-u16 length prefix and returns the length
// together with the offset of the first byte after the prefix.
func decodeShortvecLen(b []byte) (length, offset int, err error) {
	for i := 0; i < 3; i++ {
		if offset >= len(b) {
			return 0, 0, fmt.Errorf("short buffer")
		}
		elem := int(b[offset])
		offset++
		length |= (elem & 0x7f) << (7 * i)
		if elem&0x80 == 0 {
			return length, offset, nil
		}
	}
	return 0, 0, fmt.Errorf("compact-u16 too long")
}
