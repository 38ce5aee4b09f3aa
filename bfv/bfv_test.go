package bfv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"

	fheregex "github.com/RKlompUU/fhe-regex"
)

type testBench struct {
	client *Client
	server *Server
	engine *fheregex.Engine[*rlwe.Ciphertext, *rlwe.Ciphertext]
}

func newTestBench(t *testing.T) *testBench {
	t.Helper()
	params, err := NewParameters()
	require.NoError(t, err)

	client, err := NewClient(params)
	require.NoError(t, err)

	server, err := NewServer(params, client.PublicKey(), client.EvaluationKeys())
	require.NoError(t, err)

	return &testBench{
		client: client,
		server: server,
		engine: fheregex.NewEngine[*rlwe.Ciphertext, *rlwe.Ciphertext](server),
	}
}

func (tb *testBench) match(t *testing.T, content, pattern string) bool {
	t.Helper()
	ct, err := tb.client.EncryptString(content)
	require.NoError(t, err)

	res, err := tb.engine.HasMatch(context.Background(), ct, pattern)
	require.NoError(t, err)

	out, err := tb.client.DecryptBool(res)
	require.NoError(t, err)
	return out
}

func TestEncryptedMatch(t *testing.T) {
	if testing.Short() {
		t.Skip("BFV keygen and evaluation are expensive")
	}
	tb := newTestBench(t)

	// The documented scenario: only aab-shaped content of length 3
	// satisfies /^a+b$/.
	require.True(t, tb.match(t, "aab", "/^a+b$/"))
	require.False(t, tb.match(t, "acb", "/^a+b$/"))

	// Case folding and class membership on ciphertexts.
	require.True(t, tb.match(t, "aB", "/^ab$/i"))
	require.True(t, tb.match(t, "x", "/[v-z]/"))
	require.False(t, tb.match(t, "x", "/[^v-z]/"))
}

func TestConstantsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("BFV keygen is expensive")
	}
	tb := newTestBench(t)

	ct, err := tb.server.ConstantTrue()
	require.NoError(t, err)
	v, err := tb.client.DecryptBool(ct)
	require.NoError(t, err)
	require.True(t, v)

	ct, err = tb.server.ConstantFalse()
	require.NoError(t, err)
	v, err = tb.client.DecryptBool(ct)
	require.NoError(t, err)
	require.False(t, v)
}

func TestEncryptStringRejectsNonASCII(t *testing.T) {
	if testing.Short() {
		t.Skip("BFV keygen is expensive")
	}
	params, err := NewParameters()
	require.NoError(t, err)
	client, err := NewClient(params)
	require.NoError(t, err)

	_, err = client.EncryptString("héllo")
	require.Error(t, err)
}

func TestClassMembers(t *testing.T) {
	members := classMembers([]fheregex.ByteRange{{Lo: 'a', Hi: 'c'}}, false)
	require.Equal(t, []byte("abc"), members)

	members = classMembers([]fheregex.ByteRange{{Lo: 'a', Hi: 'b'}}, true)
	require.Equal(t, []byte("ABab"), members)

	members = classMembers([]fheregex.ByteRange{{Lo: '0', Hi: '1'}, {Lo: '0', Hi: '2'}}, false)
	require.Equal(t, []byte("012"), members)
}
