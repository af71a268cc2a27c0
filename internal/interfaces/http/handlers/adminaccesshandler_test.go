package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessdto "github.com/scoutystream/scouty/internal/application/access/dto"
	accessuc "github.com/scoutystream/scouty/internal/application/access/usecases"
	"github.com/scoutystream/scouty/internal/domain/access"
	"github.com/scoutystream/scouty/internal/interfaces/http/handlers/testutil"
	"github.com/scoutystream/scouty/internal/shared/errors"
)

type mockGrantAccessUC struct {
	outcome  *accessuc.GrantOutcome
	batch    *accessuc.GrantAccessBatchResult
	err      error
	cmd      accessuc.GrantAccessCommand
	batchCmd accessuc.GrantAccessBatchCommand
}

func (m *mockGrantAccessUC) Execute(ctx context.Context, cmd accessuc.GrantAccessCommand) (*accessuc.GrantOutcome, error) {
	m.cmd = cmd
	return m.outcome, m.err
}

func (m *mockGrantAccessUC) ExecuteBatch(ctx context.Context, cmd accessuc.GrantAccessBatchCommand) (*accessuc.GrantAccessBatchResult, error) {
	m.batchCmd = cmd
	return m.batch, m.err
}

type mockRevokeAccessUC struct {
	result *accessuc.RevokeAccessResult
	err    error
}

func (m *mockRevokeAccessUC) Execute(ctx context.Context, cmd accessuc.RevokeAccessCommand) (*accessuc.RevokeAccessResult, error) {
	return m.result, m.err
}

type mockAssetAccessUC struct {
	result []*accessdto.GrantDTO
	err    error
}

func (m *mockAssetAccessUC) Execute(ctx context.Context, assetID uint64) ([]*accessdto.GrantDTO, error) {
	return m.result, m.err
}

func newGrant(t *testing.T, userID string, assetID uint64) *access.Grant {
	t.Helper()
	g, err := access.NewGrant(userID, assetID, access.SourceAdmin, "")
	require.NoError(t, err)
	return g
}

func TestAdminAccessHandler_GrantAccess(t *testing.T) {
	grantUC := &mockGrantAccessUC{}
	h := NewAdminAccessHandler(grantUC, &mockRevokeAccessUC{}, &mockAssetAccessUC{}, testutil.NewMockLogger())
	grantUC.outcome = &accessuc.GrantOutcome{Grant: newGrant(t, "0xABC", 42), LedgerRecorded: true}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/access/grant",
		accessuc.GrantAccessCommand{UserID: "0xABC", AssetID: 42})
	testutil.SetAdminContext(c, "ops", "admin")

	h.GrantAccess(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0xABC", grantUC.cmd.UserID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data GrantAccessResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.LedgerRecorded)
	require.NotNil(t, data.Grant)
	assert.Equal(t, "admin", data.Grant.Source)
	assert.Nil(t, data.Grant.TransactionID)
}

func TestAdminAccessHandler_GrantAccess_AssetNotFound(t *testing.T) {
	grantUC := &mockGrantAccessUC{err: errors.NewNotFoundError("Asset not found")}
	h := NewAdminAccessHandler(grantUC, &mockRevokeAccessUC{}, &mockAssetAccessUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/access/grant",
		accessuc.GrantAccessCommand{UserID: "0xABC", AssetID: 999})

	h.GrantAccess(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminAccessHandler_GrantAccessBatch(t *testing.T) {
	grantUC := &mockGrantAccessUC{}
	h := NewAdminAccessHandler(grantUC, &mockRevokeAccessUC{}, &mockAssetAccessUC{}, testutil.NewMockLogger())
	grantUC.batch = &accessuc.GrantAccessBatchResult{
		Grants:         []*access.Grant{newGrant(t, "0xA", 42), newGrant(t, "0xB", 42)},
		LedgerRecorded: false,
	}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/access/grant-batch",
		accessuc.GrantAccessBatchCommand{UserIDs: []string{"0xA", "0xB"}, AssetID: 42})

	h.GrantAccessBatch(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"0xA", "0xB"}, grantUC.batchCmd.UserIDs)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data GrantAccessBatchResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Len(t, data.Grants, 2)
	assert.False(t, data.LedgerRecorded)
}

func TestAdminAccessHandler_RevokeAccess(t *testing.T) {
	tests := []struct {
		name   string
		result *accessuc.RevokeAccessResult
		want   string
	}{
		{"existing grant", &accessuc.RevokeAccessResult{Revoked: true, LedgerRevoked: true}, `"revoked":true`},
		{"missing grant", &accessuc.RevokeAccessResult{Revoked: false}, `"revoked":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAdminAccessHandler(&mockGrantAccessUC{}, &mockRevokeAccessUC{result: tt.result}, &mockAssetAccessUC{}, testutil.NewMockLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/access/revoke",
				accessuc.RevokeAccessCommand{UserID: "0xABC", AssetID: 42})

			h.RevokeAccess(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestAdminAccessHandler_RevokeAccess_InvalidBody(t *testing.T) {
	h := NewAdminAccessHandler(&mockGrantAccessUC{}, &mockRevokeAccessUC{}, &mockAssetAccessUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/admin/access/revoke", `{"userId":`)

	h.RevokeAccess(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminAccessHandler_GetAssetAccess(t *testing.T) {
	assetUC := &mockAssetAccessUC{result: []*accessdto.GrantDTO{{UserID: "0xABC", AssetID: 42, Source: "payment"}}}
	h := NewAdminAccessHandler(&mockGrantAccessUC{}, &mockRevokeAccessUC{}, assetUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/assets/42/access", nil)
	testutil.SetURLParam(c, "id", "42")

	h.GetAssetAccess(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var grants []accessdto.GrantDTO
	require.NoError(t, json.Unmarshal(resp.Data, &grants))
	require.Len(t, grants, 1)
	assert.Equal(t, "0xABC", grants[0].UserID)
}
