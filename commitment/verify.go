package commitment

import (
	"bytes"
	"errors"
	"fmt"

	ics23 "github.com/confio/ics23/go"
)

// VerifyMembership checks that proofBz attests path -> value under root.
// Every failure is reported as ErrVerificationFailure with the same message;
// Reason returns what was wrong.
func VerifyMembership(specs []*ics23.ProofSpec, root Root, proofBz []byte, path Path, value []byte) error {
	return rejected(verifyMembership(specs, root, proofBz, path, value))
}

// VerifyNonMembership checks that proofBz attests that path is absent under root.
func VerifyNonMembership(specs []*ics23.ProofSpec, root Root, proofBz []byte, path Path) error {
	return rejected(verifyNonMembership(specs, root, proofBz, path))
}

func verifyMembership(specs []*ics23.ProofSpec, root Root, proofBz []byte, path Path, value []byte) error {
	proof, err := validateVerificationArgs(specs, root, proofBz, path)
	if err != nil {
		return err
	}
	if len(value) == 0 {
		return errors.New("empty value in membership proof")
	}
	return verifyChainedMembership(proof.Proofs, specs, root.Hash, path, value, 0)
}

func verifyNonMembership(specs []*ics23.ProofSpec, root Root, proofBz []byte, path Path) error {
	proof, err := validateVerificationArgs(specs, root, proofBz, path)
	if err != nil {
		return err
	}

	np := proof.Proofs[0].GetNonexist()
	if np == nil {
		return fmt.Errorf("innermost proof is %T, expected non-existence proof", proof.Proofs[0].GetProof())
	}
	subroot, err := nonExistenceRoot(np)
	if err != nil {
		return err
	}
	key, err := path.Key(len(path.KeyPath) - 1)
	if err != nil {
		return err
	}
	if !ics23.VerifyNonMembership(specs[0], subroot, proof.Proofs[0], key) {
		return fmt.Errorf("non-membership of %s", path)
	}
	return verifyChainedMembership(proof.Proofs, specs, root.Hash, path, subroot, 1)
}

// verifyChainedMembership verifies proofs[index:] bottom up: each level proves
// the subroot computed by the level below under the next key of the path.
func verifyChainedMembership(proofs []*ics23.CommitmentProof, specs []*ics23.ProofSpec, root []byte, path Path, value []byte, index int) error {
	subroot := value
	for i := index; i < len(proofs); i++ {
		ep := proofs[i].GetExist()
		if ep == nil {
			return fmt.Errorf("proof at level %d is not an existence proof", i)
		}
		calculated, err := ep.Calculate()
		if err != nil {
			return fmt.Errorf("level %d: %v", i, err)
		}
		key, err := path.Key(len(path.KeyPath) - 1 - i)
		if err != nil {
			return err
		}
		if !ics23.VerifyMembership(specs[i], calculated, proofs[i], key, subroot) {
			return fmt.Errorf("membership of key %q at level %d", key, i)
		}
		subroot = calculated
	}
	if !bytes.Equal(root, subroot) {
		return fmt.Errorf("calculated root %X does not match %X", subroot, root)
	}
	return nil
}

func nonExistenceRoot(np *ics23.NonExistenceProof) ([]byte, error) {
	var (
		root []byte
		err  error
	)
	switch {
	case np.Left != nil:
		root, err = np.Left.Calculate()
	case np.Right != nil:
		root, err = np.Right.Calculate()
	default:
		return nil, errors.New("non-existence proof has no neighbours")
	}
	if err != nil {
		return nil, err
	}
	return root, nil
}

func validateVerificationArgs(specs []*ics23.ProofSpec, root Root, proofBz []byte, path Path) (Proof, error) {
	if root.Empty() {
		return Proof{}, errors.New("empty root")
	}
	proof, err := UnmarshalProof(proofBz)
	if err != nil {
		return Proof{}, err
	}
	if len(specs) == 0 || len(proof.Proofs) != len(specs) {
		return Proof{}, fmt.Errorf("proof has %d levels, expected %d", len(proof.Proofs), len(specs))
	}
	if len(path.KeyPath) != len(specs) {
		return Proof{}, fmt.Errorf("path %s has %d keys, expected %d", path, len(path.KeyPath), len(specs))
	}
	for i, p := range proof.Proofs {
		if p == nil || p.GetProof() == nil {
			return Proof{}, fmt.Errorf("proof at level %d is empty", i)
		}
	}
	return proof, nil
}
