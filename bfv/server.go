package bfv

import (
	"fmt"
	"sync"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/schemes/bfv"

	fheregex "github.com/RKlompUU/fhe-regex"
)

// Server implements fheregex.Backend over encrypted characters. It
// holds no secret material: only the public key (for encrypting the
// boolean constants) and the evaluation keys.
//
// Lattigo evaluators carry scratch buffers and are not safe for
// concurrent use, so the Server keeps a pool of shallow copies; the
// engine may call it from any number of workers.
type Server struct {
	params    bfv.Parameters
	evals     sync.Pool
	encMu     sync.Mutex
	encoder   *bfv.Encoder
	encryptor *rlwe.Encryptor
	one       *rlwe.Plaintext
}

var _ fheregex.Backend[*rlwe.Ciphertext, *rlwe.Ciphertext] = (*Server)(nil)

// NewServer builds the evaluation side from public material only.
func NewServer(params bfv.Parameters, pk *rlwe.PublicKey, evk rlwe.EvaluationKeySet) (*Server, error) {
	encoder := bfv.NewEncoder(params)

	one := bfv.NewPlaintext(params, params.MaxLevel())
	if err := encoder.Encode([]uint64{1}, one); err != nil {
		return nil, fmt.Errorf("bfv: encoding constant one: %w", err)
	}

	proto := bfv.NewEvaluator(params, evk)
	s := &Server{
		params:    params,
		encoder:   encoder,
		encryptor: rlwe.NewEncryptor(params, pk),
		one:       one,
	}
	s.evals.New = func() any { return proto.ShallowCopy() }
	return s, nil
}

func (s *Server) evaluator() *bfv.Evaluator { return s.evals.Get().(*bfv.Evaluator) }
func (s *Server) release(ev *bfv.Evaluator) { s.evals.Put(ev) }

// constantPlaintext encodes a public value into slot 0.
func (s *Server) constantPlaintext(v uint64) (*rlwe.Plaintext, error) {
	s.encMu.Lock()
	defer s.encMu.Unlock()
	pt := bfv.NewPlaintext(s.params, s.params.MaxLevel())
	if err := s.encoder.Encode([]uint64{v}, pt); err != nil {
		return nil, fmt.Errorf("bfv: encoding constant %d: %w", v, err)
	}
	return pt, nil
}

// equal computes eq(ct, k) = 1 - (ct - k)^(2^16) with sixteen
// relinearized squarings.
func (s *Server) equal(ev *bfv.Evaluator, ct *rlwe.Ciphertext, k byte) (*rlwe.Ciphertext, error) {
	pt, err := s.constantPlaintext(uint64(k))
	if err != nil {
		return nil, err
	}
	diff, err := ev.SubNew(ct, pt)
	if err != nil {
		return nil, fmt.Errorf("bfv: subtracting constant: %w", err)
	}
	for i := 0; i < 16; i++ {
		if diff, err = ev.MulRelinNew(diff, diff); err != nil {
			return nil, fmt.Errorf("bfv: squaring step %d: %w", i, err)
		}
	}
	return s.not(ev, diff)
}

// not computes 1 - x.
func (s *Server) not(ev *bfv.Evaluator, x *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	neg, err := ev.MulNew(x, -1)
	if err != nil {
		return nil, fmt.Errorf("bfv: negating: %w", err)
	}
	res, err := ev.AddNew(neg, s.one)
	if err != nil {
		return nil, fmt.Errorf("bfv: adding one: %w", err)
	}
	return res, nil
}

// or computes a + b - a*b.
func (s *Server) or(ev *bfv.Evaluator, a, b *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	sum, err := ev.AddNew(a, b)
	if err != nil {
		return nil, fmt.Errorf("bfv: adding: %w", err)
	}
	prod, err := ev.MulRelinNew(a, b)
	if err != nil {
		return nil, fmt.Errorf("bfv: multiplying: %w", err)
	}
	res, err := ev.SubNew(sum, prod)
	if err != nil {
		return nil, fmt.Errorf("bfv: subtracting product: %w", err)
	}
	return res, nil
}

// CompareEqual implements fheregex.Backend. Case-insensitive equality
// against a letter is equality against either case.
func (s *Server) CompareEqual(ch *rlwe.Ciphertext, literal byte, foldCase bool) (*rlwe.Ciphertext, error) {
	ev := s.evaluator()
	defer s.release(ev)

	res, err := s.equal(ev, ch, literal)
	if err != nil {
		return nil, err
	}
	if other := foldedByte(literal); foldCase && other != literal {
		alt, err := s.equal(ev, ch, other)
		if err != nil {
			return nil, err
		}
		return s.or(ev, res, alt)
	}
	return res, nil
}

// CompareClass implements fheregex.Backend. Membership is the
// disjunction of equality against every member byte; BFV offers no
// cheap order comparison, so ranges are expanded. Negation is 1 - x.
func (s *Server) CompareClass(ch *rlwe.Ciphertext, ranges []fheregex.ByteRange, negated, foldCase bool) (*rlwe.Ciphertext, error) {
	ev := s.evaluator()
	defer s.release(ev)

	members := classMembers(ranges, foldCase)
	if len(members) == 0 {
		// An empty membership set is constant false (or true when
		// negated); the parser does not produce one, but a backend
		// must not crash on it.
		if negated {
			return s.constantCiphertext(1)
		}
		return s.constantCiphertext(0)
	}

	res, err := s.equal(ev, ch, members[0])
	if err != nil {
		return nil, err
	}
	for _, m := range members[1:] {
		eq, err := s.equal(ev, ch, m)
		if err != nil {
			return nil, err
		}
		if res, err = s.or(ev, res, eq); err != nil {
			return nil, err
		}
	}
	if negated {
		return s.not(ev, res)
	}
	return res, nil
}

// ConstantTrue implements fheregex.Backend.
func (s *Server) ConstantTrue() (*rlwe.Ciphertext, error) { return s.constantCiphertext(1) }

// ConstantFalse implements fheregex.Backend.
func (s *Server) ConstantFalse() (*rlwe.Ciphertext, error) { return s.constantCiphertext(0) }

func (s *Server) constantCiphertext(v uint64) (*rlwe.Ciphertext, error) {
	pt, err := s.constantPlaintext(v)
	if err != nil {
		return nil, err
	}
	s.encMu.Lock()
	defer s.encMu.Unlock()
	ct, err := s.encryptor.EncryptNew(pt)
	if err != nil {
		return nil, fmt.Errorf("bfv: encrypting constant %d: %w", v, err)
	}
	return ct, nil
}

// And implements fheregex.Backend: a product over {0,1}.
func (s *Server) And(a, b *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	ev := s.evaluator()
	defer s.release(ev)
	res, err := ev.MulRelinNew(a, b)
	if err != nil {
		return nil, fmt.Errorf("bfv: multiplying: %w", err)
	}
	return res, nil
}

// Or implements fheregex.Backend: a + b - a*b over {0,1}.
func (s *Server) Or(a, b *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	ev := s.evaluator()
	defer s.release(ev)
	return s.or(ev, a, b)
}

// classMembers expands ranges into a sorted, deduplicated member list,
// adding the opposite case of every letter when folding.
func classMembers(ranges []fheregex.ByteRange, foldCase bool) []byte {
	var present [256]bool
	for _, r := range ranges {
		for b := int(r.Lo); b <= int(r.Hi); b++ {
			present[b] = true
			if foldCase {
				present[foldedByte(byte(b))] = true
			}
		}
	}
	var members []byte
	for b := 0; b < 256; b++ {
		if present[b] {
			members = append(members, byte(b))
		}
	}
	return members
}

// foldedByte returns the opposite-case letter, or the byte itself.
func foldedByte(b byte) byte {
	switch {
	case b >= 'A' && b <= 'Z':
		return b + ('a' - 'A')
	case b >= 'a' && b <= 'z':
		return b - ('a' - 'A')
	}
	return b
}
