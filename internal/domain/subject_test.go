package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    Route
	}{
		{
			subject: "ingest.t1.orders",
			want:    Route{Kind: KindIngest, TenantID: "t1", Resource: ResourceOrders},
		},
		{
			subject: "webhook.demo.myshopify.com.orders.create",
			want:    Route{Kind: KindWebhook, ShopDomain: "demo.myshopify.com", Resource: ResourceOrders, Action: "create"},
		},
		{
			subject: "webhook.shop.checkouts.update",
			want:    Route{Kind: KindWebhook, ShopDomain: "shop", Resource: ResourceCheckouts, Action: "update"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			got, err := ParseSubject(tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSubject_Invalid(t *testing.T) {
	for _, subject := range []string{
		"",
		"ingest",
		"ingest.t1",
		"ingest.t1.orders.extra",
		"ingest..orders",
		"webhook.orders.create",
		"webhook..orders.create",
		"other.t1.orders",
	} {
		t.Run(subject, func(t *testing.T) {
			_, err := ParseSubject(subject)
			assert.ErrorIs(t, err, ErrInvalidSubject)
		})
	}
}

func TestSubjectsRoundTrip(t *testing.T) {
	route, err := ParseSubject(WebhookSubject("demo.myshopify.com", "orders/create"))
	require.NoError(t, err)
	assert.Equal(t, "demo.myshopify.com", route.ShopDomain)
	assert.Equal(t, "orders/create", route.Topic())

	route, err = ParseSubject(SyncSubject("abc123", ResourceProducts))
	require.NoError(t, err)
	assert.Equal(t, KindIngest, route.Kind)
	assert.Equal(t, "abc123", route.TenantID)
	assert.Equal(t, ResourceProducts, route.Resource)
}

func TestParseSyncResource(t *testing.T) {
	for _, r := range SyncResources {
		got, err := ParseSyncResource(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseSyncResource("checkouts")
	assert.ErrorIs(t, err, ErrUnsupportedResource)
}

func TestValidateTopic(t *testing.T) {
	for _, ok := range []string{"orders/create", "app/uninstalled", "orders/partially_fulfilled", "app_subscriptions/update"} {
		assert.NoError(t, ValidateTopic(ok), ok)
	}
	for _, bad := range []string{"", "shop", "orders/", "/create", "orders/create/extra", "orders/cre ate", "orders/*", "orders/>", "orders.create/x"} {
		assert.ErrorIs(t, ValidateTopic(bad), ErrInvalidTopic, bad)
	}
}
