package commitment

import (
	ics23 "github.com/confio/ics23/go"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	proto "github.com/gogo/protobuf/proto"
	tmcrypto "github.com/tendermint/tendermint/proto/tendermint/crypto"
)

// ProofOpSimpleMerkle is the proof op type emitted by the host store for every
// level of a commitment.
const ProofOpSimpleMerkle = "ics23:simple"

// NewProofOp wraps a commitment proof for key into a tendermint proof op.
func NewProofOp(key []byte, proof *ics23.CommitmentProof) (tmcrypto.ProofOp, error) {
	bz, err := proto.Marshal(proof)
	if err != nil {
		return tmcrypto.ProofOp{}, sdkerrors.Wrap(ErrInvalidProof, err.Error())
	}
	return tmcrypto.ProofOp{Type: ProofOpSimpleMerkle, Key: key, Data: bz}, nil
}

// ProofFromProofOps converts the proof ops of a store query into a Proof.
func ProofFromProofOps(ops *tmcrypto.ProofOps) (Proof, error) {
	if ops == nil || len(ops.Ops) == 0 {
		return Proof{}, sdkerrors.Wrap(ErrInvalidProof, "no proof ops")
	}
	proofs := make([]*ics23.CommitmentProof, len(ops.Ops))
	for i, op := range ops.Ops {
		if op.Type != ProofOpSimpleMerkle {
			return Proof{}, sdkerrors.Wrapf(ErrInvalidProof, "unsupported proof op type %s", op.Type)
		}
		var p ics23.CommitmentProof
		if err := proto.Unmarshal(op.Data, &p); err != nil {
			return Proof{}, sdkerrors.Wrapf(ErrInvalidProof, "op %d: %v", i, err)
		}
		proofs[i] = &p
	}
	return Proof{Proofs: proofs}, nil
}
