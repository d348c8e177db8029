package application_test

import (
	"context"
	"encoding/json"
	"testing"

	"shopify-ingest/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncService_SeedsOneJobPerResource(t *testing.T) {
	h := newHarness(t)
	tenant := h.onboard(t, "demo.myshopify.com", "")

	started, err := h.sync.Start(context.Background(), "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, started.ID)
	assert.Empty(t, started.AccessToken)

	msgs := h.bus.all()
	require.Len(t, msgs, 3)
	subjects := make([]string, 0, len(msgs))
	for _, m := range msgs {
		subjects = append(subjects, m.Subject)
		var job domain.SyncJob
		require.NoError(t, json.Unmarshal(m.Data, &job))
		assert.Equal(t, domain.SyncStatusStart, job.Status)
		assert.Empty(t, job.Cursor)
	}
	assert.ElementsMatch(t, []string{
		"ingest." + tenant.ID + ".customers",
		"ingest." + tenant.ID + ".orders",
		"ingest." + tenant.ID + ".products",
	}, subjects)
}

func TestSyncService_UnknownShop(t *testing.T) {
	h := newHarness(t)
	_, err := h.sync.Start(context.Background(), "ghost.myshopify.com")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.Empty(t, h.bus.all())
}
