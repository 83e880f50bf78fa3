package app

import (
	"strings"

	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Querier answers custom queries against the last committed state. path is
// the query path with the "custom/<route>" prefix removed.
type Querier func(ms storetypes.MultiStore, path []string, req abci.RequestQuery) ([]byte, error)

// SetQuerier routes custom queries of route to querier.
func (app *BaseApp) SetQuerier(route string, querier Querier) {
	if app.sealed {
		panic("SetQuerier() on sealed BaseApp")
	}
	if app.queriers == nil {
		app.queriers = make(map[string]Querier)
	}
	app.queriers[route] = querier
}

// Query answers "/store/<store>/key" queries, optionally proven against the
// app hash of req.Height, and "/custom/<route>/..." queries.
func (app *BaseApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	path := splitPath(req.Path)
	if len(path) == 0 {
		return sdkerrors.QueryResult(sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, "no query path provided"))
	}

	switch path[0] {
	case "store":
		return handleQueryStore(app, path, req)
	case "custom":
		return handleQueryCustom(app, path, req)
	}

	return sdkerrors.QueryResult(sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, "unknown query path"))
}

func handleQueryStore(app *BaseApp, path []string, req abci.RequestQuery) abci.ResponseQuery {
	if req.Height < 0 || req.Height > app.LastBlockHeight() {
		return sdkerrors.QueryResult(
			sdkerrors.Wrapf(sdkerrors.ErrInvalidRequest, "cannot query height %d; latest height: %d", req.Height, app.LastBlockHeight()),
		)
	}
	if req.Prove && app.LastBlockHeight() == 0 {
		return sdkerrors.QueryResult(sdkerrors.Wrap(sdkerrors.ErrInvalidRequest, "cannot query with proof before the first block"))
	}
	// "/store" prefix for store queries
	req.Path = "/" + strings.Join(path[1:], "/")
	return app.cms.Query(req)
}

func handleQueryCustom(app *BaseApp, path []string, req abci.RequestQuery) abci.ResponseQuery {
	// path[0] should be "custom" because "/custom" prefix is required for keeper
	// queries.
	//
	// The querier is routed using path[1]. For example, in the path
	// "custom/ibc/packet", it is routed using "ibc".
	if len(path) < 2 || path[1] == "" {
		return sdkerrors.QueryResult(sdkerrors.Wrap(sdkerrors.ErrUnknownRequest, "no route for custom query specified"))
	}

	querier, ok := app.queriers[path[1]]
	if !ok {
		return sdkerrors.QueryResult(sdkerrors.Wrapf(sdkerrors.ErrUnknownRequest, "no custom querier found for route %s", path[1]))
	}

	// cache wrap the commit-multistore for safety
	cacheMS := app.cms.CacheMultiStore()

	resBytes, err := querier(cacheMS, path[2:], req)
	if err != nil {
		res := sdkerrors.QueryResult(err)
		res.Height = app.LastBlockHeight()
		return res
	}

	return abci.ResponseQuery{
		Height: app.LastBlockHeight(),
		Value:  resBytes,
	}
}

// splitPath splits a string path using the delimiter '/'.
//
// e.g. "this/is/funny" becomes []string{"this", "is", "funny"}
func splitPath(requestPath string) (path []string) {
	path = strings.Split(requestPath, "/")

	// first element is empty string
	if len(path) > 0 && path[0] == "" {
		path = path[1:]
	}

	return path
}
