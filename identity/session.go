package identity

import (
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/ark-network/ark-sdk-go/arkerrors"
	"github.com/ark-network/ark-sdk-go/musig2"
)

// musigSession is the shared SignerSession implementation for every
// in-memory Identity variant; it is not exported because callers only ever
// see the SignerSession interface.
type musigSession struct {
	mu       sync.Mutex
	priv     *btcec.PrivateKey
	nonces   *musig2.Nonces
	consumed bool
}

func newMusigSession(priv *btcec.PrivateKey) *musigSession {
	return &musigSession{priv: priv}
}

func (s *musigSession) PublicKey() *btcec.PublicKey {
	return s.priv.PubKey()
}

func (s *musigSession) GenerateNonce() ([66]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := musig2.GenerateNonces(s.priv.PubKey())
	if err != nil {
		return [66]byte{}, arkerrors.New(arkerrors.CryptoError, "identity.SignerSession.GenerateNonce", err)
	}
	s.nonces = n
	s.consumed = false
	return n.PubNonce, nil
}

func (s *musigSession) Sign(combinedNonce [66]byte, msg [32]byte, keyAgg *musig2.KeyAggResult) (*musig2.PartialSig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nonces == nil {
		return nil, arkerrors.New(arkerrors.StateError, "identity.SignerSession.Sign", ErrNonceNotGenerated)
	}
	if s.consumed {
		return nil, arkerrors.New(arkerrors.StateError, "identity.SignerSession.Sign", ErrNonceReused)
	}

	sig, err := musig2.Sign(s.nonces.SecNonce, s.priv, musig2.SignOptions{
		KeyAgg:        keyAgg,
		CombinedNonce: combinedNonce,
		Message:       msg,
	})
	if err != nil {
		return nil, arkerrors.New(arkerrors.CryptoError, "identity.SignerSession.Sign", err)
	}
	s.consumed = true
	return sig, nil
}
