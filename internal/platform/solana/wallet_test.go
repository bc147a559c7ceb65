package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWallet(t *testing.T) (*Wallet, ed25519.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	w, err := NewWallet(base58.Encode(priv))
	require.NoError(t, err)
	return w, pub
}

func TestNewWallet(t *testing.T) {
	w, pub := testWallet(t)
	assert.Equal(t, base58.Encode(pub), w.PublicKey())
}

func TestNewWalletRejectsBadKeys(t *testing.T) {
	_, err := NewWallet("0-not-base58")
	assert.Error(t, err)

	// Right alphabet, wrong length.
	_, err = NewWallet(base58.Encode(make([]byte, 32)))
	assert.ErrorContains(t, err, "64 bytes")
}

// unsignedTx builds a minimal transaction: a compact-u16 signature count,
// that many zeroed signature slots, then the message bytes.
func unsignedTx(sigCount int, message []byte) string {
	raw := append([]byte{byte(sigCount)}, make([]byte, sigCount*signatureSize)...)
	raw = append(raw, message...)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestSignTransactionFillsFeePayerSlot(t *testing.T) {
	w, pub := testWallet(t)
	message := []byte("serialized message bytes")

	signed, err := w.SignTransaction(unsignedTx(1, message))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(signed)
	require.NoError(t, err)

	sig := raw[1 : 1+signatureSize]
	assert.True(t, ed25519.Verify(pub, message, sig))
	assert.Equal(t, message, raw[1+signatureSize:])
}

func TestSignTransactionOnlyTouchesFirstSlot(t *testing.T) {
	w, pub := testWallet(t)
	message := []byte("multi signer message")

	signed, err := w.SignTransaction(unsignedTx(2, message))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(signed)
	require.NoError(t, err)

	first := raw[1 : 1+signatureSize]
	second := raw[1+signatureSize : 1+2*signatureSize]
	assert.True(t, ed25519.Verify(pub, message, first))
	assert.Equal(t, make([]byte, signatureSize), second, "second slot stays empty")
}

func TestSignTransactionRejectsMalformedInput(t *testing.T) {
	w, _ := testWallet(t)

	_, err := w.SignTransaction("not base64!!!")
	assert.Error(t, err)

	// No signature slots.
	noSlots := base64.StdEncoding.EncodeToString(append([]byte{0}, []byte("msg")...))
	_, err = w.SignTransaction(noSlots)
	assert.ErrorContains(t, err, "no signature slots")

	// Claims one slot but the buffer ends before the message starts.
	truncated := base64.StdEncoding.EncodeToString(append([]byte{1}, make([]byte, 10)...))
	_, err = w.SignTransaction(truncated)
	assert.ErrorContains(t, err, "truncated")
}

func TestDecodeShortvecLen(t *testing.T) {
	length, offset, err := decodeShortvecLen([]byte{0x05, 0xAA})
	require.NoError(t, err)
	assert.Equal(t, 5, length)
	assert.Equal(t, 1, offset)

	// 300 = 0xAC 0x02 in compact-u16.
	length, offset, err = decodeShortvecLen([]byte{0xAC, 0x02})
	require.NoError(t, err)
	assert.Equal(t, 300, length)
	assert.Equal(t, 2, offset)

	_, _, err = decodeShortvecLen(nil)
	assert.Error(t, err)

	_, _, err = decodeShortvecLen([]byte{0xFF, 0xFF, 0xFF})
	assert.Error(t, err)
}
