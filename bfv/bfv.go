// Package bfv implements the fheregex backend over the Lattigo BFV
// scheme. Each content character is encrypted into its own ciphertext
// carrying the byte value in slot 0; encrypted booleans are BFV
// ciphertexts whose slot 0 holds 0 or 1.
//
// Equality against a pattern constant uses Fermat's little theorem:
// with plaintext modulus t = 65537, (x-k)^(t-1) is 1 exactly when
// x != k, so eq(x,k) = 1 - (x-k)^(t-1), and t-1 = 2^16 makes the
// exponentiation sixteen relinearized squarings. Boolean combination
// is arithmetic on {0,1}: AND is a product, OR is a + b - a*b.
package bfv

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/schemes/bfv"
)

// NewParameters returns the BFV parameter set used by this backend:
// 128-bit security, plaintext modulus 65537.
func NewParameters() (bfv.Parameters, error) {
	return bfv.NewParametersFromLiteral(bfv.ExampleParameters128BitLogN14LogQP438)
}

// Client holds the key material. It lives with the content owner;
// servers only ever see the public key, the evaluation keys and
// ciphertexts.
type Client struct {
	params    bfv.Parameters
	sk        *rlwe.SecretKey
	pk        *rlwe.PublicKey
	rlk       *rlwe.RelinearizationKey
	encoder   *bfv.Encoder
	encryptor *rlwe.Encryptor
	decryptor *rlwe.Decryptor
}

// NewClient generates a fresh key pair and relinearization key.
func NewClient(params bfv.Parameters) (*Client, error) {
	kgen := rlwe.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)
	return &Client{
		params:    params,
		sk:        sk,
		pk:        pk,
		rlk:       rlk,
		encoder:   bfv.NewEncoder(params),
		encryptor: rlwe.NewEncryptor(params, pk),
		decryptor: rlwe.NewDecryptor(params, sk),
	}, nil
}

// PublicKey returns the encryption key a server may hold.
func (c *Client) PublicKey() *rlwe.PublicKey { return c.pk }

// EvaluationKeys returns the key set a server needs to relinearize.
func (c *Client) EvaluationKeys() rlwe.EvaluationKeySet {
	return rlwe.NewMemEvaluationKeySet(c.rlk)
}

// EncryptString encrypts s one character per ciphertext. The engine
// assumes ASCII-origin content, so anything else is rejected here,
// before encryption.
func (c *Client) EncryptString(s string) ([]*rlwe.Ciphertext, error) {
	cts := make([]*rlwe.Ciphertext, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 0x80 {
			return nil, fmt.Errorf("bfv: content byte %d is not ASCII", i)
		}
		pt := bfv.NewPlaintext(c.params, c.params.MaxLevel())
		if err := c.encoder.Encode([]uint64{uint64(b)}, pt); err != nil {
			return nil, fmt.Errorf("bfv: encoding content byte %d: %w", i, err)
		}
		ct, err := c.encryptor.EncryptNew(pt)
		if err != nil {
			return nil, fmt.Errorf("bfv: encrypting content byte %d: %w", i, err)
		}
		cts[i] = ct
	}
	return cts, nil
}

// DecryptBool decrypts an encrypted boolean produced by the engine.
func (c *Client) DecryptBool(ct *rlwe.Ciphertext) (bool, error) {
	pt := c.decryptor.DecryptNew(ct)
	vals := make([]uint64, 1)
	if err := c.encoder.Decode(pt, vals); err != nil {
		return false, fmt.Errorf("bfv: decoding result: %w", err)
	}
	return vals[0] != 0, nil
}
