package core

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
)

func TestSignatureString(t *testing.T) {
	sig := make([]byte, 64)
	sig[0] = 7
	tx := &AdaptedTx{Signature: sig}
	decoded, err := base58.Decode(tx.SignatureString())
	assert.NoError(t, err)
	assert.Equal(t, sig, decoded)
}
