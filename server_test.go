package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firodj/soramap/internal"
)

const serverMap = `.init section layout
00000000 000114 80003100 4 __start
.text section layout
00000000 000020 80005560 4 OSInit
.rodata section layout
00000000 000040 80400000 8 @stringBase0
.bss section layout
00000000 000000 80500000 4 empty
`

func newTestServer(t *testing.T) *httptest.Server {
	entries, err := internal.ParseSymbolMap(strings.NewReader(serverMap))
	require.NoError(t, err)

	doc := internal.NewSoraDocument(nil, nil)
	_, err = internal.NewSymbolApplier(doc, nil).Apply(context.Background(), entries)
	require.NoError(t, err)

	ts := httptest.NewServer(newServer(doc))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestServerFunctions(t *testing.T) {
	ts := newTestServer(t)

	var funs []internal.SoraFunction
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/functions", &funs))
	require.Len(t, funs, 2)
	assert.Equal(t, "__start", funs[0].Name)
	assert.Equal(t, uint32(0x80005560), funs[1].Address)
}

func TestServerDataAndLabels(t *testing.T) {
	ts := newTestServer(t)

	var data []internal.SoraData
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/data", &data))
	require.Len(t, data, 1)
	assert.Equal(t, uint32(0x40), data[0].Size)

	var labels []internal.SoraLabel
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/labels", &labels))
	assert.Len(t, labels, 4)

	var diags []string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/diagnostics", &diags))
	assert.Equal(t, []string{"Can't apply properties for symbol: 80500000 - empty"}, diags)
}

func TestServerSymbol(t *testing.T) {
	ts := newTestServer(t)

	var resp symbolResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/symbols/0x80005564", &resp))
	assert.Nil(t, resp.Label)
	require.NotNil(t, resp.Function)
	assert.Equal(t, "OSInit", resp.Function.Name)

	resp = symbolResponse{}
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/symbols/80400000", &resp))
	require.NotNil(t, resp.Label)
	assert.Equal(t, "@stringBase0", resp.Label.Name)
	assert.NotNil(t, resp.Data)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/symbols/90000000", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/symbols/nope", nil))
}
