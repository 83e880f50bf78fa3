package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestEncoderOmitsDefaults(t *testing.T) {
	require := require.New(t)

	bz := NewEncoder().String(1, "").Uint64(2, 0).Bytes(3, nil).Bool(4, false).Encode()
	require.Empty(bz)

	bz = NewEncoder().Message(1, nil).Encode()
	require.Equal([]byte{0x0a, 0x00}, bz)
}

func TestDecodeFields(t *testing.T) {
	require := require.New(t)

	bz := NewEncoder().
		String(1, "client").
		Strings(2, []string{"a", "b"}).
		Enum(3, 2).
		Uint64(5, 300).
		Encode()

	var (
		s      string
		ss     []string
		enum   uint64
		number uint64
	)
	err := DecodeFields(bz, func(f Field) error {
		switch f.Num {
		case 1:
			s = f.String()
		case 2:
			ss = append(ss, f.String())
		case 3:
			require.NoError(ExpectType(f, protowire.VarintType))
			enum = f.Varint
		case 5:
			number = f.Varint
		}
		return nil
	})
	require.NoError(err)
	require.Equal("client", s)
	require.Equal([]string{"a", "b"}, ss)
	require.Equal(uint64(2), enum)
	require.Equal(uint64(300), number)

	require.Error(DecodeFields([]byte{0x0a, 0x05, 'a'}, func(Field) error { return nil }))
}

func TestAny(t *testing.T) {
	require := require.New(t)

	bz := EncodeAny("/test.Type", []byte("value"))
	url, value, err := DecodeAny(bz)
	require.NoError(err)
	require.Equal("/test.Type", url)
	require.Equal([]byte("value"), value)

	_, _, err = DecodeAny(NewEncoder().Bytes(2, []byte("x")).Encode())
	require.ErrorIs(err, ErrDecode)
}
