package auth

import (
	"fmt"

	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// RecoverSigner returns the account that produced a personal_sign signature
// over message. Both 0/1 and 27/28 recovery ids are accepted.
func RecoverSigner(message, signatureHex string) (ethcommon.Address, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %v", common.ErrBadSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return ethcommon.Address{}, fmt.Errorf("%w: length %d", common.ErrBadSignature, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %v", common.ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
