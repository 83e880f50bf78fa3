package port

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type nopModule struct{ Module }

func TestRouter(t *testing.T) {
	require := require.New(t)

	rtr := NewRouter()
	module := nopModule{}
	rtr.AddRoute("transfer", module).AddRoute("mock", module)

	require.True(rtr.HasRoute("mock"))
	require.False(rtr.HasRoute("oracle"))
	require.Equal([]string{"mock", "transfer"}, rtr.Ports())

	got, err := rtr.Route("transfer")
	require.NoError(err)
	require.Equal(module, got)

	_, err = rtr.Route("oracle")
	require.ErrorIs(err, ErrPortNotFound)

	require.Panics(func() { rtr.AddRoute("mock", module) }, "duplicate port")
	require.Panics(func() { rtr.AddRoute("m", module) }, "invalid port identifier")

	rtr.Seal()
	require.True(rtr.Sealed())
	require.Panics(func() { rtr.AddRoute("oracle", module) })
	require.Panics(func() { rtr.Seal() })
}
