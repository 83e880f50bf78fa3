package connection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/yui-ibc-core/commitment"
	"github.com/hyperledger-labs/yui-ibc-core/core/client"
)

var (
	prefix = commitment.NewPrefix([]byte("ibc"))

	clientID             = "xx-attested-0"
	counterpartyClientID = "xx-attested-1"
	connectionID         = "connection-0"
)

func TestConnectionEndEncoding(t *testing.T) {
	require := require.New(t)

	connection := NewConnectionEnd(TRYOPEN, clientID, NewCounterparty(counterpartyClientID, connectionID, prefix), GetCompatibleVersions(), 10)
	decoded, err := UnmarshalConnectionEnd(connection.Marshal())
	require.NoError(err)
	require.Equal(connection, decoded)

	// the counterparty connection id is omitted while unknown
	init := NewConnectionEnd(INIT, clientID, NewCounterparty(counterpartyClientID, "", prefix), GetCompatibleVersions(), 0)
	decoded, err = UnmarshalConnectionEnd(init.Marshal())
	require.NoError(err)
	require.Equal(init, decoded)
	require.NotEqual(init.Marshal(), connection.Marshal())

	_, err = UnmarshalConnectionEnd([]byte{0xff})
	require.ErrorIs(err, ErrInvalidConnection)
}

func TestConnectionEndValidateBasic(t *testing.T) {
	testCases := []struct {
		name       string
		connection ConnectionEnd
		expPass    bool
	}{
		{"valid connection", NewConnectionEnd(INIT, clientID, NewCounterparty(counterpartyClientID, connectionID, prefix), GetCompatibleVersions(), 0), true},
		{"invalid client id", NewConnectionEnd(INIT, "(clientID1)", NewCounterparty(counterpartyClientID, connectionID, prefix), GetCompatibleVersions(), 0), false},
		{"empty versions", NewConnectionEnd(INIT, clientID, NewCounterparty(counterpartyClientID, connectionID, prefix), nil, 0), false},
		{"invalid version", NewConnectionEnd(INIT, clientID, NewCounterparty(counterpartyClientID, connectionID, prefix), []Version{{}}, 0), false},
		{"invalid counterparty connection id", NewConnectionEnd(INIT, clientID, NewCounterparty(counterpartyClientID, "conn", prefix), GetCompatibleVersions(), 0), false},
		{"empty counterparty prefix", NewConnectionEnd(INIT, clientID, NewCounterparty(counterpartyClientID, connectionID, commitment.Prefix{}), GetCompatibleVersions(), 0), false},
	}

	for i, tc := range testCases {
		err := tc.connection.ValidateBasic()
		if tc.expPass {
			require.NoError(t, err, "valid test case %d failed: %s", i, tc.name)
		} else {
			require.Error(t, err, "invalid test case %d passed: %s", i, tc.name)
		}
	}
}

func TestMsgConnectionOpenInitValidateBasic(t *testing.T) {
	version := DefaultIBCVersion
	invalidVersion := NewVersion("", nil)

	testCases := []struct {
		name    string
		msg     *MsgConnectionOpenInit
		expPass bool
	}{
		{"success", NewMsgConnectionOpenInit(clientID, counterpartyClientID, prefix, &version, 500, "signer"), true},
		{"nil version", NewMsgConnectionOpenInit(clientID, counterpartyClientID, prefix, nil, 500, "signer"), true},
		{"invalid client id", NewMsgConnectionOpenInit("test/iris", counterpartyClientID, prefix, nil, 500, "signer"), false},
		{"invalid counterparty client id", NewMsgConnectionOpenInit(clientID, "test/conn1", prefix, nil, 500, "signer"), false},
		{"empty counterparty prefix", NewMsgConnectionOpenInit(clientID, counterpartyClientID, commitment.Prefix{}, nil, 500, "signer"), false},
		{"invalid version", NewMsgConnectionOpenInit(clientID, counterpartyClientID, prefix, &invalidVersion, 500, "signer"), false},
		{"empty signer", NewMsgConnectionOpenInit(clientID, counterpartyClientID, prefix, nil, 500, ""), false},
		{"counterparty connection id set", &MsgConnectionOpenInit{
			ClientID:     clientID,
			Counterparty: NewCounterparty(counterpartyClientID, connectionID, prefix),
			Signer:       "signer",
		}, false},
	}

	for _, tc := range testCases {
		err := tc.msg.ValidateBasic()
		if tc.expPass {
			require.NoError(t, err, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}
}

func TestMsgConnectionOpenConfirmValidateBasic(t *testing.T) {
	proofHeight := client.NewHeight(0, 10)

	testCases := []struct {
		name    string
		msg     *MsgConnectionOpenConfirm
		expPass bool
	}{
		{"success", NewMsgConnectionOpenConfirm(connectionID, []byte("proof"), proofHeight, "signer"), true},
		{"invalid connection id", NewMsgConnectionOpenConfirm("test/conn1", []byte("proof"), proofHeight, "signer"), false},
		{"empty proof", NewMsgConnectionOpenConfirm(connectionID, nil, proofHeight, "signer"), false},
		{"zero proof height", NewMsgConnectionOpenConfirm(connectionID, []byte("proof"), client.ZeroHeight(), "signer"), false},
		{"empty signer", NewMsgConnectionOpenConfirm(connectionID, []byte("proof"), proofHeight, " "), false},
	}

	for _, tc := range testCases {
		err := tc.msg.ValidateBasic()
		if tc.expPass {
			require.NoError(t, err, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}
}

func TestGetBlockDelay(t *testing.T) {
	k := Keeper{params: DefaultParams()}
	require.Equal(t, uint64(0), k.getBlockDelay(ConnectionEnd{}))
	require.Equal(t, uint64(1), k.getBlockDelay(ConnectionEnd{DelayPeriod: 1}))
	require.Equal(t, uint64(2), k.getBlockDelay(ConnectionEnd{DelayPeriod: uint64(2 * DefaultMaxExpectedTimePerBlock)}))
	require.Equal(t, uint64(3), k.getBlockDelay(ConnectionEnd{DelayPeriod: uint64(2*DefaultMaxExpectedTimePerBlock) + 1}))
}
