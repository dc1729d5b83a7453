package muxhandlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitalvas/edgemux/mux"
)

func serve(t *testing.T, r *mux.Router, req *http.Request) *mux.Result {
	t.Helper()

	res, err := mux.HandleRequest(context.Background(), mux.Config{Request: req, Router: r})
	require.NoError(t, err)
	return res
}

func okHandler(_ *mux.Request, w *mux.Response) error {
	w.Send("ok")
	return nil
}
