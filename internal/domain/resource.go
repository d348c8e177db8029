package domain

import "fmt"

// Resource identifies a kind of Shopify entity the pipeline ingests
type Resource string

const (
	ResourceCustomers Resource = "customers"
	ResourceOrders    Resource = "orders"
	ResourceProducts  Resource = "products"
	ResourceCheckouts Resource = "checkouts"
)

// SyncResources are the resources a backfill walks, in seed order
var SyncResources = []Resource{ResourceCustomers, ResourceOrders, ResourceProducts}

// ParseSyncResource validates a resource name carried by a sync job
func ParseSyncResource(s string) (Resource, error) {
	switch r := Resource(s); r {
	case ResourceCustomers, ResourceOrders, ResourceProducts:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedResource, s)
	}
}

func (r Resource) String() string {
	return string(r)
}
